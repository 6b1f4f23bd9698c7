package reminder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"tasknotify/internal/domain"
)

const (
	DefaultNickname = "Hey"
	ReminderTitle   = "⏰ Task Reminder"

	fireTimeout = 30 * time.Second
)

// TaskSource yields the current tasks and nickname in a single read.
type TaskSource interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Notifier displays a notification.
type Notifier interface {
	Available() bool
	Notify(ctx context.Context, n domain.Notification) error
}

// State records whether notifications were granted. The zero value is
// disabled.
type State struct {
	Enabled bool `json:"enabled"`
}

// Handle describes one armed reminder. It has no cancel operation.
type Handle struct {
	ID    string        `json:"id"`
	Task  string        `json:"task"`
	DueAt time.Time     `json:"due_at"`
	Delay time.Duration `json:"delay"`
}

type Scheduler struct {
	source    TaskSource
	notifier  Notifier
	announcer *Announcer
	deferrer  Deferrer
	now       func() time.Time

	mu    sync.Mutex
	armed []Handle
	fired atomic.Int64
}

func NewScheduler(source TaskSource, notifier Notifier, announcer *Announcer, deferrer Deferrer) *Scheduler {
	return &Scheduler{
		source:    source,
		notifier:  notifier,
		announcer: announcer,
		deferrer:  deferrer,
		now:       time.Now,
	}
}

// Message is the text shown and spoken when a reminder fires.
func Message(nickname, task string) string {
	if nickname == "" {
		nickname = DefaultNickname
	}
	return fmt.Sprintf("%s, your %s time has arrived", nickname, task)
}

// Schedule arms one reminder per task that is not done and is due strictly
// after now. It does nothing while st is disabled.
func (s *Scheduler) Schedule(ctx context.Context, st State) ([]Handle, error) {
	if !st.Enabled {
		return nil, nil
	}

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	nickname := snap.Nickname
	if nickname == "" {
		nickname = DefaultNickname
	}

	fireCtx := context.WithoutCancel(ctx)
	var handles []Handle
	for _, item := range snap.Items {
		if h, ok := s.arm(fireCtx, nickname, item); ok {
			handles = append(handles, h)
		}
	}

	s.mu.Lock()
	s.armed = append(s.armed, handles...)
	s.mu.Unlock()
	return handles, nil
}

// ScheduleTask arms a reminder for a single task added after Schedule ran,
// under the same skip rules. It reports false when nothing was armed.
func (s *Scheduler) ScheduleTask(ctx context.Context, st State, nickname string, item domain.TaskItem) (Handle, bool) {
	if !st.Enabled {
		return Handle{}, false
	}
	if nickname == "" {
		nickname = DefaultNickname
	}
	h, ok := s.arm(context.WithoutCancel(ctx), nickname, item)
	if ok {
		s.mu.Lock()
		s.armed = append(s.armed, h)
		s.mu.Unlock()
	}
	return h, ok
}

func (s *Scheduler) arm(fireCtx context.Context, nickname string, item domain.TaskItem) (Handle, bool) {
	if item.Done {
		return Handle{}, false
	}
	now := s.now()
	if !item.DueAt.After(now) {
		return Handle{}, false
	}
	delay := item.DueAt.Sub(now)

	h := Handle{ID: "rem_" + uuid.NewString(), Task: item.Text, DueAt: item.DueAt, Delay: delay}
	msg := Message(nickname, item.Text)
	s.deferrer.Arm(item.DueAt, func() { s.fire(fireCtx, h, msg) })

	log.Info().
		Str("reminder_id", h.ID).
		Str("task", item.Text).
		Dur("delay", delay).
		Msgf("reminder scheduled for %q in %ds", item.Text, int64(delay.Round(time.Second)/time.Second))
	return h, true
}

func (s *Scheduler) fire(ctx context.Context, h Handle, msg string) {
	ctx, cancel := context.WithTimeout(ctx, fireTimeout)
	defer cancel()

	s.fired.Add(1)
	log.Info().Str("reminder_id", h.ID).Str("task", h.Task).Msg("reminder fired")

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, domain.Notification{Title: ReminderTitle, Body: msg}); err != nil {
			log.Error().Err(err).Str("reminder_id", h.ID).Msg("notification failed")
		}
	}
	s.announcer.Speak(ctx, msg)
}

// Armed lists every reminder armed by this scheduler, fired or not.
func (s *Scheduler) Armed() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Handle, len(s.armed))
	copy(out, s.armed)
	return out
}

// Fired reports how many reminders have fired.
func (s *Scheduler) Fired() int64 { return s.fired.Load() }
