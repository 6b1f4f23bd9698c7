package reminder

import (
	"context"

	"github.com/rs/zerolog/log"
	"tasknotify/internal/domain"
)

// Speaker produces audio for an utterance.
type Speaker interface {
	Available() bool
	Say(ctx context.Context, u domain.Utterance) error
}

// Announcer speaks messages aloud, best effort.
type Announcer struct {
	speaker Speaker
}

func NewAnnouncer(s Speaker) *Announcer {
	return &Announcer{speaker: s}
}

// Speak hands text to the speaker in en-US at normal rate and pitch. It is a
// no-op without a usable speaker and never reports failure.
func (a *Announcer) Speak(ctx context.Context, text string) {
	if a == nil || a.speaker == nil || !a.speaker.Available() {
		return
	}
	u := domain.Utterance{Text: text, Lang: "en-US", Rate: 1, Pitch: 1}
	if err := a.speaker.Say(ctx, u); err != nil {
		log.Warn().Err(err).Str("text", text).Msg("speech failed")
	}
}
