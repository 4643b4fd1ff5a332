// Package notify delivers best-effort desktop notifications about mirror
// progress. Failures are collected, never fatal.
package notify

import (
	"log/slog"
	"os"
	"os/exec"
)

// Notifier sends a progress message with a severity category and exposes
// any delivery errors collected so far.
type Notifier interface {
	Notify(msg, status string)
	Errors() []string
}

// Available reports whether a graphical display is present. It is probed
// once at startup and threaded into the orchestrator explicitly rather
// than consulted as ambient state.
func Available() bool {
	return os.Getenv("DISPLAY") != ""
}

// Disabled is the no-op notifier used for headless runs.
type Disabled struct{}

func (Disabled) Notify(string, string) {}

func (Disabled) Errors() []string { return nil }

// icon names follow the freedesktop icon naming convention.
var icons = map[string]string{
	"ok":    "dialog-ok",
	"info":  "dialog-information",
	"error": "dialog-error",
	"warm":  "dialog-warning",
	"ask":   "dialog-question",
	"sync":  "go-jump",
}

// Desktop sends libnotify notifications through the notify-send helper.
type Desktop struct {
	logger *slog.Logger
	errs   []string
}

// NewDesktop creates a Desktop notifier.
func NewDesktop(logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{logger: logger}
}

// Notify shows one notification. Errors are remembered for the run log.
func (d *Desktop) Notify(msg, status string) {
	icon, ok := icons[status]
	if !ok {
		icon = icons["info"]
	}
	cmd := exec.Command("notify-send", "-i", icon, "LFTP Mirror", msg)
	if err := cmd.Run(); err != nil {
		d.logger.Debug("notification failed", "error", err)
		d.errs = append(d.errs, err.Error())
	}
}

// Errors returns the delivery failures collected so far.
func (d *Desktop) Errors() []string { return d.errs }
