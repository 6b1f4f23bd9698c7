package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"tasknotify/internal/domain"
)

type fakeSource struct {
	snap  domain.Snapshot
	err   error
	reads int
}

func (f *fakeSource) Snapshot(context.Context) (domain.Snapshot, error) {
	f.reads++
	return f.snap, f.err
}

type fakeNotifier struct {
	available bool
	err       error

	mu   sync.Mutex
	sent []domain.Notification
}

func (f *fakeNotifier) Available() bool { return f.available }

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

func (f *fakeNotifier) Sent() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.sent...)
}

type fakeSpeaker struct {
	available bool
	err       error

	mu     sync.Mutex
	spoken []domain.Utterance
}

func (f *fakeSpeaker) Available() bool { return f.available }

func (f *fakeSpeaker) Say(_ context.Context, u domain.Utterance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, u)
	return f.err
}

func (f *fakeSpeaker) Spoken() []domain.Utterance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Utterance(nil), f.spoken...)
}

type armed struct {
	at time.Time
	fn func()
}

type fakeDeferrer struct {
	entries []armed
}

func (f *fakeDeferrer) Arm(at time.Time, fn func()) {
	f.entries = append(f.entries, armed{at: at, fn: fn})
}

func (f *fakeDeferrer) fireAll() {
	for _, e := range f.entries {
		e.fn()
	}
}

type alertLog []string

func (a *alertLog) Alert(msg string) { *a = append(*a, msg) }

var errBoom = errors.New("boom")
