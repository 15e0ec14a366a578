// Package console abstracts the interactive surface the provisioners talk
// to, keeping prompting out of the business logic so tests can script it.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"droidprep/internal/tui"
)

// UI is the capability surface provisioners use to report progress and ask
// for decisions. Background runs a long operation cancellably; the worker
// must honor context cancellation at safe points.
type UI interface {
	Info(msg string)
	Success(msg string)
	FinalSuccess(msg string)
	YesNo(prompt string) bool
	Input(prompt string) (string, error)
	Terms(url, prompt string) error
	Background(ctx context.Context, title string, work func(context.Context) error) error
}

// ErrTermsDeclined reports that the user refused a terms-of-service prompt.
var ErrTermsDeclined = errors.New("terms of service declined")

// Terminal is the interactive implementation backed by promptui and a
// spinner for background work. Plain disables the spinner, running
// background work inline (still cancellable through the parent context).
type Terminal struct {
	Out   io.Writer
	Plain bool
}

// NewTerminal returns a Terminal writing to stdout.
func NewTerminal(plain bool) *Terminal {
	return &Terminal{Out: os.Stdout, Plain: plain}
}

func (t *Terminal) Info(msg string) {
	fmt.Fprintln(t.Out, color.CyanString(msg))
}

func (t *Terminal) Success(msg string) {
	fmt.Fprintln(t.Out, color.GreenString(msg))
}

func (t *Terminal) FinalSuccess(msg string) {
	bold := color.New(color.FgGreen, color.Bold)
	fmt.Fprintln(t.Out, bold.Sprint(msg))
}

func (t *Terminal) YesNo(prompt string) bool {
	fmt.Fprintln(t.Out, prompt)
	confirm := promptui.Prompt{
		Label:     "Continue",
		IsConfirm: true,
	}
	_, err := confirm.Run()
	return err == nil
}

func (t *Terminal) Input(prompt string) (string, error) {
	p := promptui.Prompt{
		Label: prompt,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("a value is required")
			}
			return nil
		},
	}
	result, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(result), nil
}

func (t *Terminal) Terms(url, prompt string) error {
	t.Info(url)
	if !t.YesNo(prompt) {
		return ErrTermsDeclined
	}
	return nil
}

func (t *Terminal) Background(ctx context.Context, title string, work func(context.Context) error) error {
	if t.Plain {
		fmt.Fprintln(t.Out, title)
		return work(ctx)
	}
	return tui.Run(ctx, t.Out, title, work)
}

var _ UI = (*Terminal)(nil)
