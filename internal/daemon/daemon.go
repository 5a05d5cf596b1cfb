package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/notify"
	"github.com/username/year-dots/internal/yeartracker"
	"go.uber.org/zap"
)

// Daemon represents the daemon process
type Daemon struct {
	manager        *yeartracker.Manager
	notifier       notify.Notifier
	reminderHour   int // Hour to send the reminder (0-23)
	reminderMinute int // Minute to send the reminder (0-59)
	location       *time.Location
	systemTray     bool // Show system tray icon
	logger         *zap.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	cron           *cron.Cron
	trayApp        *TrayApp
	now            func() time.Time

	mu               sync.Mutex // Protect against concurrent reminders
	lastReminderDate string     // Track last handled reminder date to avoid duplicates
	lastReminderTime time.Time
}

// NewDaemon creates a new daemon instance with a daily reminder schedule
func NewDaemon(manager *yeartracker.Manager, notifier notify.Notifier, cfg config.DaemonConfig, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	hour, minute := cfg.GetReminderTime()
	loc := cfg.GetLocation()

	return &Daemon{
		manager:        manager,
		notifier:       notifier,
		reminderHour:   hour,
		reminderMinute: minute,
		location:       loc,
		systemTray:     cfg.SystemTray,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		cron:           cron.New(cron.WithLocation(loc)),
		now:            func() time.Time { return time.Now().In(loc) },
	}
}

// Start starts the daemon and blocks until it is stopped
func (d *Daemon) Start() error {
	if err := d.setupCronJobs(); err != nil {
		return err
	}

	// Initialize system tray if enabled (Windows only)
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			d.runScheduledLogic()
			return nil
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	d.runScheduledLogic()
	return nil
}

func (d *Daemon) setupCronJobs() error {
	// Day rollover check
	if _, err := d.cron.AddFunc("@every 1m", d.rollover); err != nil {
		return fmt.Errorf("failed to schedule rollover: %w", err)
	}

	spec := fmt.Sprintf("%d %d * * *", d.reminderMinute, d.reminderHour)
	if _, err := d.cron.AddFunc(spec, func() {
		if _, err := d.runReminder(d.now()); err != nil {
			d.logger.Error("Reminder failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	return nil
}

// runScheduledLogic runs the cron scheduler until a signal or Stop
func (d *Daemon) runScheduledLogic() {
	d.logger.Info("Daemon scheduled logic started",
		zap.Int("reminder_hour", d.reminderHour),
		zap.Int("reminder_minute", d.reminderMinute),
		zap.String("timezone", d.location.String()))

	d.cron.Start()
	defer func() {
		<-d.cron.Stop().Done()
	}()

	// Catch up when the reminder time already passed today
	now := d.now().In(d.location)
	if now.After(d.reminderAt(now)) {
		d.logger.Info("Reminder time already passed today, checking now",
			zap.Time("scheduled_time", d.reminderAt(now)))
		if _, err := d.runReminder(now); err != nil {
			d.logger.Error("Initial reminder failed", zap.Error(err))
		}
	}

	d.logger.Info("Next reminder scheduled", zap.Time("next_run", d.calculateNextRun(now)))

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-d.ctx.Done():
		d.logger.Info("Daemon stopped")
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		d.Stop()
	}

	if d.trayApp != nil {
		d.trayApp.Stop()
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// rollover moves the manager's today to the current day in the daemon location
func (d *Daemon) rollover() {
	d.manager.RefreshToday(d.now().In(d.location))
}

// reminderAt returns today's reminder time in the daemon location
func (d *Daemon) reminderAt(now time.Time) time.Time {
	now = now.In(d.location)
	return time.Date(now.Year(), now.Month(), now.Day(),
		d.reminderHour, d.reminderMinute, 0, 0, d.location)
}

// calculateNextRun calculates the next reminder time after now
func (d *Daemon) calculateNextRun(now time.Time) time.Time {
	next := d.reminderAt(now)
	if !now.Before(next) {
		return next.AddDate(0, 0, 1)
	}
	return next
}

// runReminder sends the daily reminder unless today is outside the tracked
// year, already marked, or already handled. Reports whether a message was sent.
func (d *Daemon) runReminder(now time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now = now.In(d.location)
	today := now.Format("2006-01-02")
	if d.lastReminderDate == today {
		d.logger.Debug("Reminder already handled today, skipping",
			zap.String("last_reminder_date", d.lastReminderDate),
			zap.Time("last_reminder_time", d.lastReminderTime))
		return false, nil
	}

	d.manager.RefreshToday(now)

	if d.manager.TodayIndex() < 0 {
		d.logger.Info("Today is outside the tracked year, no reminder",
			zap.Int("year", d.manager.Year()))
		d.markHandled(today, now)
		return false, nil
	}
	if d.manager.TodayMarked() {
		d.logger.Info("Today already marked, no reminder")
		d.markHandled(today, now)
		return false, nil
	}

	status, err := d.manager.Status()
	if err != nil {
		return false, fmt.Errorf("failed to build status: %w", err)
	}

	if err := d.notifier.Notify(d.ctx, "Year dots", ReminderText(status)); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}

	d.markHandled(today, now)
	d.logger.Info("Reminder sent", zap.String("date", today))
	return true, nil
}

func (d *Daemon) markHandled(date string, now time.Time) {
	d.lastReminderDate = date
	d.lastReminderTime = now
}

// ReminderText formats the reminder body for status
func ReminderText(status yeartracker.Status) string {
	return fmt.Sprintf("Day %d of %d. %d dots so far, today is still open.",
		status.TodayIndex, status.TotalDays, status.Marked)
}

// MarkToday marks today (called from tray menu)
func (d *Daemon) MarkToday() {
	d.logger.Info("Mark today triggered from tray")
	if err := d.manager.MarkToday(d.ctx); err != nil {
		d.logger.Error("Failed to mark today", zap.Error(err))
		if d.trayApp != nil {
			d.trayApp.ShowNotification("Mark Failed", fmt.Sprintf("Error: %v", err))
		}
		return
	}
	if d.trayApp != nil {
		d.trayApp.ShowNotification("Marked", "Today is marked")
	}
}

// GetStatus returns the tracked year status
func (d *Daemon) GetStatus() (yeartracker.Status, error) {
	return d.manager.Status()
}

// StatusText formats status for the tray tooltip and dialog
func StatusText(status yeartracker.Status) string {
	today := "not marked"
	if status.TodayMarked {
		today = "marked"
	}
	if !status.InYear {
		today = "outside " + fmt.Sprint(status.Year)
	}
	return fmt.Sprintf("Year: %d\nDots: %d of %d\nToday (%s): %s\nElapsed: %.1f%%",
		status.Year, status.Marked, status.TotalDays, status.Today, today, status.ElapsedPct)
}
