package reminder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Deferrer runs a function once when a point in time arrives.
type Deferrer interface {
	Arm(at time.Time, fn func())
}

// CronDeferrer arms one-shot cron entries. Entries remove themselves after
// they run.
type CronDeferrer struct {
	cron *cron.Cron
}

func NewCronDeferrer() *CronDeferrer {
	l := cronLogger{}
	return &CronDeferrer{
		cron: cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l))),
	}
}

func (d *CronDeferrer) Start() { d.cron.Start() }

// Stop halts the scheduler and returns a context that is done once running
// jobs have finished.
func (d *CronDeferrer) Stop() context.Context { return d.cron.Stop() }

func (d *CronDeferrer) Arm(at time.Time, fn func()) {
	var (
		mu sync.Mutex
		id cron.EntryID
	)
	mu.Lock()
	id = d.cron.Schedule(&oneShot{at: at}, cron.FuncJob(func() {
		fn()
		mu.Lock()
		defer mu.Unlock()
		d.cron.Remove(id)
	}))
	mu.Unlock()
}

// oneShot yields its time exactly once. If the first lookup is already past
// the time it is still handed out so the entry runs immediately.
type oneShot struct {
	at     time.Time
	issued atomic.Bool
}

func (s *oneShot) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		s.issued.Store(true)
		return s.at
	}
	if s.issued.CompareAndSwap(false, true) {
		return s.at
	}
	return time.Time{}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
