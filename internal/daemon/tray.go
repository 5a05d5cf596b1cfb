//go:build windows
// +build windows

package daemon

import (
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	icon   []byte
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	icon, err := trayIcon()
	if err != nil {
		return nil, fmt.Errorf("failed to build tray icon: %w", err)
	}

	return &TrayApp{
		daemon: daemon,
		logger: logger,
		icon:   icon,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(t.icon)
	systray.SetTitle("YD")
	t.refreshTooltip()

	mMarkToday := systray.AddMenuItem("Mark today", "Mark today as done")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show current status")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	// Start daemon logic in background
	go t.daemon.runScheduledLogic()

	go func() {
		for {
			select {
			case <-mMarkToday.ClickedCh:
				t.logger.Info("Mark today clicked from tray")
				t.daemon.MarkToday()
				t.refreshTooltip()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// ShowNotification shows a notification (Windows only)
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray doesn't have built-in notification support
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
}

func (t *TrayApp) refreshTooltip() {
	status, err := t.daemon.GetStatus()
	if err != nil {
		systray.SetTooltip("Year dots")
		return
	}
	systray.SetTooltip(fmt.Sprintf("Year dots: %d in %d", status.Marked, status.Year))
}

// showStatus shows the tracked year status
func (t *TrayApp) showStatus() {
	status, err := t.daemon.GetStatus()
	if err != nil {
		t.logger.Error("Failed to get status", zap.Error(err))
		showMessageBox("Year Dots Status", "No status available")
		return
	}
	t.logger.Info("Current status", zap.Any("status", status))

	message := StatusText(status)
	t.refreshTooltip()
	showMessageBox("Year Dots Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
