// Package speech turns utterances into audio through a local synthesizer.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"tasknotify/internal/domain"
)

var ErrUnsupported = errors.New("speech synthesis not supported")

const (
	baseWordsPerMinute = 175
	basePitch          = 50
)

// Espeak speaks through espeak-ng, falling back to espeak.
type Espeak struct {
	Binaries []string
}

func NewEspeak() Espeak { return Espeak{Binaries: []string{"espeak-ng", "espeak"}} }

func (e Espeak) Available() bool {
	_, err := e.binary()
	return err == nil
}

// Say blocks until the utterance has been played.
func (e Espeak) Say(ctx context.Context, u domain.Utterance) error {
	bin, err := e.binary()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, bin, Args(u)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s error: %v; out=%s", bin, err, string(out))
	}
	return nil
}

// Args maps an utterance onto espeak flags. Rate and pitch are multipliers
// of the synthesizer defaults.
func Args(u domain.Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	pitch := u.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	p := int(basePitch * pitch)
	if p > 99 {
		p = 99
	}
	args := []string{
		"-s", strconv.Itoa(int(baseWordsPerMinute * rate)),
		"-p", strconv.Itoa(p),
	}
	if u.Lang != "" {
		args = append(args, "-v", strings.ToLower(u.Lang))
	}
	return append(args, "--", u.Text)
}

func (e Espeak) binary() (string, error) {
	for _, name := range e.Binaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrUnsupported
}
