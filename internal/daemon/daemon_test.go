package daemon

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/yeartracker"
	"go.uber.org/zap"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, title, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestDaemon(t *testing.T, notifier *fakeNotifier) (*Daemon, *yeartracker.Manager) {
	t.Helper()

	cfg := config.Default()
	cfg.Year = 2026
	cfg.Storage.Dir = t.TempDir()
	cfg.Daemon.ReminderTime = "21:30"

	manager, err := yeartracker.Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := manager.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return NewDaemon(manager, notifier, cfg.Daemon, zap.NewNop()), manager
}

func TestRunReminder_SendsOncePerDay(t *testing.T) {
	notifier := &fakeNotifier{}
	d, _ := newTestDaemon(t, notifier)
	now := time.Date(2026, 2, 10, 21, 30, 0, 0, time.Local)

	sent, err := d.runReminder(now)
	if err != nil || !sent {
		t.Fatalf("runReminder() = %v, %v; want true, nil", sent, err)
	}
	sent, err = d.runReminder(now.Add(time.Minute))
	if err != nil || sent {
		t.Errorf("second runReminder() = %v, %v; want false, nil", sent, err)
	}
	if notifier.count() != 1 {
		t.Errorf("sent %d messages, want 1", notifier.count())
	}
	if !strings.Contains(notifier.messages[0], "Day 41 of 365") {
		t.Errorf("message = %q", notifier.messages[0])
	}
}

func TestRunReminder_SkipsMarkedDay(t *testing.T) {
	notifier := &fakeNotifier{}
	d, manager := newTestDaemon(t, notifier)
	now := time.Date(2026, 2, 10, 21, 30, 0, 0, time.Local)

	manager.RefreshToday(now)
	if err := manager.MarkToday(context.Background()); err != nil {
		t.Fatalf("MarkToday() error = %v", err)
	}

	sent, err := d.runReminder(now)
	if err != nil || sent {
		t.Errorf("runReminder() = %v, %v; want false, nil", sent, err)
	}
	if notifier.count() != 0 {
		t.Errorf("sent %d messages for a marked day", notifier.count())
	}
}

func TestRunReminder_UsesDaemonTimezone(t *testing.T) {
	notifier := &fakeNotifier{}
	d, manager := newTestDaemon(t, notifier)
	d.location = time.FixedZone("UTC+9", 9*60*60)

	if _, err := manager.ToggleKey(context.Background(), "2026-02-11"); err != nil {
		t.Fatalf("ToggleKey() error = %v", err)
	}

	// Feb 11 08:30 in the daemon zone
	now := time.Date(2026, 2, 10, 23, 30, 0, 0, time.UTC)
	sent, err := d.runReminder(now)
	if err != nil || sent {
		t.Errorf("runReminder() = %v, %v; want false, nil", sent, err)
	}
	if got := manager.Today().Format("2006-01-02"); got != "2026-02-11" {
		t.Errorf("manager today = %s, want 2026-02-11", got)
	}
	if d.lastReminderDate != "2026-02-11" {
		t.Errorf("lastReminderDate = %s, want 2026-02-11", d.lastReminderDate)
	}
}

func TestRollover_UsesDaemonTimezone(t *testing.T) {
	d, manager := newTestDaemon(t, &fakeNotifier{})
	d.location = time.FixedZone("UTC-5", -5*60*60)
	d.now = func() time.Time { return time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC) }

	d.rollover()
	if got := manager.Today().Format("2006-01-02"); got != "2026-02-28" {
		t.Errorf("manager today = %s, want 2026-02-28", got)
	}

	// a second tick on the same zone day changes nothing
	if manager.RefreshToday(d.now().In(d.location)) {
		t.Error("RefreshToday() reported a change on the same day")
	}
}

func TestRunReminder_SkipsOutsideYear(t *testing.T) {
	notifier := &fakeNotifier{}
	d, _ := newTestDaemon(t, notifier)

	sent, err := d.runReminder(time.Date(2027, 1, 5, 21, 30, 0, 0, time.Local))
	if err != nil || sent {
		t.Errorf("runReminder() = %v, %v; want false, nil", sent, err)
	}
	if notifier.count() != 0 {
		t.Errorf("sent %d messages outside the tracked year", notifier.count())
	}
}

func TestRunReminder_FailureIsRetried(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("network down")}
	d, _ := newTestDaemon(t, notifier)
	now := time.Date(2026, 2, 10, 21, 30, 0, 0, time.Local)

	if _, err := d.runReminder(now); err == nil {
		t.Fatal("runReminder() expected error, got nil")
	}

	notifier.err = nil
	sent, err := d.runReminder(now.Add(time.Minute))
	if err != nil || !sent {
		t.Errorf("retry runReminder() = %v, %v; want true, nil", sent, err)
	}
}

func TestRunReminder_NextDaySendsAgain(t *testing.T) {
	notifier := &fakeNotifier{}
	d, _ := newTestDaemon(t, notifier)

	for day := 10; day <= 12; day++ {
		if _, err := d.runReminder(time.Date(2026, 2, day, 21, 30, 0, 0, time.Local)); err != nil {
			t.Fatalf("runReminder() error = %v", err)
		}
	}
	if notifier.count() != 3 {
		t.Errorf("sent %d messages over three days, want 3", notifier.count())
	}
}

func TestCalculateNextRun(t *testing.T) {
	d, _ := newTestDaemon(t, &fakeNotifier{})
	d.location = time.UTC

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"Before reminder", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 21, 30, 0, 0, time.UTC)},
		{"At reminder", time.Date(2026, 4, 1, 21, 30, 0, 0, time.UTC), time.Date(2026, 4, 2, 21, 30, 0, 0, time.UTC)},
		{"After reminder", time.Date(2026, 4, 1, 23, 0, 0, 0, time.UTC), time.Date(2026, 4, 2, 21, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.calculateNextRun(tt.now); !got.Equal(tt.want) {
				t.Errorf("calculateNextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestSetupCronJobs(t *testing.T) {
	d, _ := newTestDaemon(t, &fakeNotifier{})

	if err := d.setupCronJobs(); err != nil {
		t.Fatalf("setupCronJobs() error = %v", err)
	}
	if got := len(d.cron.Entries()); got != 2 {
		t.Errorf("cron entries = %d, want 2", got)
	}
}

func TestStatusText(t *testing.T) {
	d, manager := newTestDaemon(t, &fakeNotifier{})
	manager.RefreshToday(time.Date(2026, 1, 2, 12, 0, 0, 0, time.Local))

	status, err := d.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	text := StatusText(status)
	if !strings.Contains(text, "Dots: 0 of 365") || !strings.Contains(text, "not marked") {
		t.Errorf("StatusText() = %q", text)
	}
}

func TestTrayIcon(t *testing.T) {
	data, err := trayIcon()
	if err != nil {
		t.Fatalf("trayIcon() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != trayIconSize || b.Dy() != trayIconSize {
		t.Errorf("icon bounds = %v", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("icon corner should be transparent")
	}
	if _, _, _, a := img.At(trayIconSize/2, trayIconSize/2).RGBA(); a == 0 {
		t.Error("icon center should be opaque")
	}
}
