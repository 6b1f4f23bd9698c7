package notify

import (
	"context"

	"github.com/rs/zerolog/log"
	"tasknotify/internal/domain"
)

// Log writes notifications to the process log. It is always available.
type Log struct{}

func (Log) Available() bool { return true }

func (Log) Notify(_ context.Context, n domain.Notification) error {
	log.Info().Str("title", n.Title).Str("body", n.Body).Msg("notification")
	return nil
}

// None is a sink that is never available.
type None struct{}

func (None) Available() bool { return false }

func (None) Notify(context.Context, domain.Notification) error { return ErrUnavailable }
