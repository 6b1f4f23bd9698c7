package reminder

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"tasknotify/internal/domain"
)

const (
	EnabledTitle  = "⏰ Task reminders enabled"
	EnabledSpeech = "Task reminders enabled"

	AlertUnsupported = "Notifications not supported"
	AlertDenied      = "Permission denied"
)

// PermissionGate asks the user for consent to send notifications.
type PermissionGate interface {
	Request(ctx context.Context) (domain.Permission, error)
}

// StaticGate answers every request with a fixed outcome.
type StaticGate domain.Permission

func (g StaticGate) Request(context.Context) (domain.Permission, error) {
	return domain.Permission(g), nil
}

// ParsePermission maps a configured outcome name to a Permission.
func ParsePermission(s string) (domain.Permission, error) {
	switch p := domain.Permission(s); p {
	case domain.PermissionGranted, domain.PermissionDenied, domain.PermissionDefault:
		return p, nil
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// Alerter shows a blocking, user-facing message.
type Alerter interface {
	Alert(msg string)
}

type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

// Enabler runs the enabling action: check the notification capability, ask
// for permission and, once granted, arm reminders.
type Enabler struct {
	gate      PermissionGate
	notifier  Notifier
	announcer *Announcer
	scheduler *Scheduler
}

func NewEnabler(gate PermissionGate, notifier Notifier, announcer *Announcer, scheduler *Scheduler) *Enabler {
	return &Enabler{gate: gate, notifier: notifier, announcer: announcer, scheduler: scheduler}
}

// Enable returns the resulting state and the reminders it armed. Unsupported
// notifications and refused permission each raise exactly one alert and arm
// nothing. The returned error is only set when reading tasks failed after
// permission was granted; the state is enabled in that case.
func (e *Enabler) Enable(ctx context.Context, alerts Alerter) (State, []Handle, error) {
	if e.notifier == nil || !e.notifier.Available() {
		alerts.Alert(AlertUnsupported)
		return State{}, nil, nil
	}

	perm, err := e.gate.Request(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("permission request failed")
		perm = domain.PermissionDefault
	}
	if perm != domain.PermissionGranted {
		log.Info().Str("permission", string(perm)).Msg("notifications not enabled")
		alerts.Alert(AlertDenied)
		return State{}, nil, nil
	}

	st := State{Enabled: true}
	e.announcer.Speak(ctx, EnabledSpeech)
	if err := e.notifier.Notify(ctx, domain.Notification{Title: EnabledTitle}); err != nil {
		log.Error().Err(err).Msg("notification failed")
	}

	handles, err := e.scheduler.Schedule(ctx, st)
	if err != nil {
		return st, nil, err
	}
	log.Info().Int("armed", len(handles)).Msg("task reminders enabled")
	return st, handles, nil
}
