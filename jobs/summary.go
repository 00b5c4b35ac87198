// Package jobs runs the scheduled background work of the server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Counter reports attendance per day.
type Counter interface {
	Today() string
	DailyCount(ctx context.Context, date string) (int64, error)
}

// StartDailySummary schedules a job that logs how many users were marked
// today. spec is a five-field cron expression evaluated in loc. The
// returned scheduler must be stopped on shutdown.
func StartDailySummary(spec string, loc *time.Location, counter Counter, log *logrus.Logger) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	if _, err := s.Cron(spec).Do(RunDailySummary, counter, log); err != nil {
		return nil, fmt.Errorf("schedule daily summary %q: %w", spec, err)
	}

	s.StartAsync()
	log.WithField("cron", spec).Info("Daily attendance summary scheduled")
	return s, nil
}

// RunDailySummary logs today's attendance count once.
func RunDailySummary(counter Counter, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	date := counter.Today()
	n, err := counter.DailyCount(ctx, date)
	if err != nil {
		log.WithError(err).WithField("date", date).Error("Daily attendance summary failed")
		return
	}
	log.WithFields(logrus.Fields{"date": date, "attendance": n}).Info("Daily attendance summary")
}
