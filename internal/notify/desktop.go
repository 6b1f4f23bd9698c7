package notify

import (
	"context"
	"fmt"
	"os/exec"

	"tasknotify/internal/domain"
)

// Desktop shows notifications through notify-send.
type Desktop struct {
	Command string
}

func NewDesktop() Desktop { return Desktop{Command: "notify-send"} }

func (d Desktop) Available() bool {
	_, err := exec.LookPath(d.command())
	return err == nil
}

func (d Desktop) Notify(ctx context.Context, n domain.Notification) error {
	if !d.Available() {
		return ErrUnavailable
	}
	args := []string{"--app-name=tasknotify", n.Title}
	if n.Body != "" {
		args = append(args, n.Body)
	}
	cmd := exec.CommandContext(ctx, d.command(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("notify-send error: %v; out=%s", err, string(out))
	}
	return nil
}

func (d Desktop) command() string {
	if d.Command == "" {
		return "notify-send"
	}
	return d.Command
}
