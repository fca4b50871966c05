package jobs

import (
	"context"
	"time"

	"makazi/services/logger"

	"github.com/robfig/cron/v3"
)

// TourReminder sends reminders for the tours happening today.
type TourReminder interface {
	SendTourReminders(ctx context.Context) (int, error)
}

const reminderTimeout = 2 * time.Minute

// InitCronJobs registers the daily reminder and starts the scheduler.
func InitCronJobs(c *cron.Cron, reminder TourReminder, schedule string, log logger.Logger) error {
	_, err := c.AddFunc(schedule, func() {
		RunTourReminders(context.Background(), reminder, log)
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info("Cron jobs initialized (tour reminders at %q)", schedule)
	return nil
}

func RunTourReminders(ctx context.Context, reminder TourReminder, log logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, reminderTimeout)
	defer cancel()

	start := time.Now()
	sent, err := reminder.SendTourReminders(ctx)
	if err != nil {
		log.Error("tour reminders failed after %d sent: %v", sent, err)
		return
	}
	log.Info("sent %d tour reminders in %s", sent, time.Since(start))
}
