package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotify/internal/domain"
)

func TestArgs(t *testing.T) {
	u := domain.Utterance{Text: "Sam, your Meeting time has arrived", Lang: "en-US", Rate: 1, Pitch: 1}
	assert.Equal(t, []string{"-s", "175", "-p", "50", "-v", "en-us", "--", u.Text}, Args(u))

	fast := domain.Utterance{Text: "hi", Rate: 2, Pitch: 3}
	assert.Equal(t, []string{"-s", "350", "-p", "99", "--", "hi"}, Args(fast))
}

func TestEspeak_Unsupported(t *testing.T) {
	e := Espeak{Binaries: []string{"tasknotify-no-such-tts"}}
	assert.False(t, e.Available())
	assert.ErrorIs(t, e.Say(context.Background(), domain.Utterance{Text: "hi"}), ErrUnsupported)
}

type recordingBackend struct {
	mu    sync.Mutex
	texts []string
	done  chan struct{}
	want  int
}

func (b *recordingBackend) Available() bool { return true }

func (b *recordingBackend) Say(_ context.Context, u domain.Utterance) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts = append(b.texts, u.Text)
	if len(b.texts) == b.want {
		close(b.done)
	}
	return nil
}

func TestQueue_PlaysInOrder(t *testing.T) {
	b := &recordingBackend{done: make(chan struct{}), want: 3}
	q := NewQueue(b, 8)
	assert.True(t, q.Available())

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, q.Say(context.Background(), domain.Utterance{Text: s}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	select {
	case <-b.done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "queue did not drain")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, []string{"one", "two", "three"}, b.texts)
}

func TestQueue_Full(t *testing.T) {
	q := NewQueue(&recordingBackend{}, 1)
	require.NoError(t, q.Say(context.Background(), domain.Utterance{Text: "a"}))
	assert.ErrorIs(t, q.Say(context.Background(), domain.Utterance{Text: "b"}), ErrQueueFull)
}

func TestQueue_NilBackendUnavailable(t *testing.T) {
	assert.False(t, NewQueue(nil, 1).Available())
}

func TestQueue_StopEndsRun(t *testing.T) {
	q := NewQueue(&recordingBackend{}, 1)
	finished := make(chan struct{})
	go func() {
		q.Run(context.Background())
		close(finished)
	}()

	q.Stop()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Run did not return after Stop")
	}
}
