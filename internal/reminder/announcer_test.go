package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasknotify/internal/domain"
)

func TestAnnouncer_Speak(t *testing.T) {
	sp := &fakeSpeaker{available: true}
	NewAnnouncer(sp).Speak(context.Background(), "hello")
	assert.Equal(t, []domain.Utterance{{Text: "hello", Lang: "en-US", Rate: 1, Pitch: 1}}, sp.Spoken())
}

func TestAnnouncer_UnsupportedIsNoop(t *testing.T) {
	sp := &fakeSpeaker{available: false}
	NewAnnouncer(sp).Speak(context.Background(), "hello")
	assert.Empty(t, sp.Spoken())

	assert.NotPanics(t, func() { NewAnnouncer(nil).Speak(context.Background(), "hello") })
	var a *Announcer
	assert.NotPanics(t, func() { a.Speak(context.Background(), "hello") })
}

func TestAnnouncer_SwallowsFailure(t *testing.T) {
	sp := &fakeSpeaker{available: true, err: errBoom}
	assert.NotPanics(t, func() { NewAnnouncer(sp).Speak(context.Background(), "hello") })
	assert.Len(t, sp.Spoken(), 1)
}
