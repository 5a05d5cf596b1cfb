//go:build !windows

package daemon

import (
	"errors"

	"go.uber.org/zap"
)

// ErrTrayUnsupported is returned by NewTrayApp where no tray is available.
// The daemon then runs its schedule headless.
var ErrTrayUnsupported = errors.New("year dots tray icon needs Windows")

// TrayApp has no tray to drive on this platform
type TrayApp struct {
	logger *zap.Logger
}

func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return nil, ErrTrayUnsupported
}

func (t *TrayApp) Run() {}

func (t *TrayApp) Stop() {}

// ShowNotification drops mark/status notices
func (t *TrayApp) ShowNotification(title, message string) {}
