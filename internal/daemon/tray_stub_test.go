//go:build !windows

package daemon

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewTrayApp_Unsupported(t *testing.T) {
	d, _ := newTestDaemon(t, &fakeNotifier{})

	app, err := NewTrayApp(d, zap.NewNop())
	if !errors.Is(err, ErrTrayUnsupported) || app != nil {
		t.Errorf("NewTrayApp() = %v, %v; want nil, ErrTrayUnsupported", app, err)
	}
}

func TestMarkToday_WithoutTray(t *testing.T) {
	d, manager := newTestDaemon(t, &fakeNotifier{})
	manager.RefreshToday(time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local))

	d.MarkToday()
	if !manager.TodayMarked() {
		t.Error("MarkToday() did not mark today")
	}
}
