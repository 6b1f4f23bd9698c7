package speech

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"tasknotify/internal/domain"
)

var ErrQueueFull = errors.New("speech queue full")

// Backend plays one utterance and returns when it is done.
type Backend interface {
	Available() bool
	Say(ctx context.Context, u domain.Utterance) error
}

// Queue plays utterances one at a time in the order they were submitted.
// Say only enqueues; Run does the playing.
type Queue struct {
	backend Backend
	jobs    chan domain.Utterance
	stop    chan struct{}
	timeout time.Duration
}

func NewQueue(backend Backend, size int) *Queue {
	if size <= 0 {
		size = 16
	}
	return &Queue{
		backend: backend,
		jobs:    make(chan domain.Utterance, size),
		stop:    make(chan struct{}),
		timeout: time.Minute,
	}
}

func (q *Queue) Available() bool { return q.backend != nil && q.backend.Available() }

func (q *Queue) Say(_ context.Context, u domain.Utterance) error {
	select {
	case q.jobs <- u:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stop:
			return
		case u := <-q.jobs:
			c, cancel := context.WithTimeout(ctx, q.timeout)
			if err := q.backend.Say(c, u); err != nil {
				log.Warn().Err(err).Str("text", u.Text).Msg("utterance failed")
			}
			cancel()
		}
	}
}

func (q *Queue) Stop() {
	close(q.stop)
}
