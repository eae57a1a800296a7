package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/email"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const (
	reminderJobName     = "visit_reminders"
	reminderCron        = "*/5 * * * *"
	pendingJobName      = "expire_pending_visits"
	pendingCron         = "* * * * *"
	reminderSendTimeout = 10 * time.Second
)

// BookingJobs holds what the booking maintenance jobs need.
type BookingJobs struct {
	DB           *db.DB
	Sender       email.EmailSender
	ReminderLead time.Duration
	Now          func() time.Time
}

// Register adds the reminder and pending-expiry jobs to the process-wide scheduler.
func (j BookingJobs) Register() error {
	if j.DB == nil {
		return fmt.Errorf("booking jobs require database")
	}

	if _, err := AddJob(pendingJobName, pendingCron, func() error {
		_, err := j.ExpirePendingVisits(j.jobContext(pendingJobName))
		return err
	}); err != nil {
		return fmt.Errorf("add pending visit job: %w", err)
	}

	if j.Sender == nil {
		log.Info().Msg("Email disabled; visit reminder job not registered")
		return nil
	}
	if _, err := AddJob(reminderJobName, reminderCron, func() error {
		_, err := j.SendDueReminders(j.jobContext(reminderJobName))
		return err
	}); err != nil {
		return fmt.Errorf("add visit reminder job: %w", err)
	}
	return nil
}

func (j BookingJobs) jobContext(name string) context.Context {
	logger := log.With().Str("component", "scheduler").Str("job_name", name).Logger()
	return logger.WithContext(context.Background())
}

func (j BookingJobs) now() time.Time {
	if j.Now != nil {
		return j.Now().UTC()
	}
	return time.Now().UTC()
}

// ExpirePendingVisits cancels pending visits nobody confirmed before they started.
func (j BookingJobs) ExpirePendingVisits(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	logger := zerolog.Ctx(ctx)

	now := j.now()
	count, err := j.DB.Queries.CancelExpiredPendingVisits(ctx, dbgen.CancelExpiredPendingVisitsParams{
		CancelledAt: apiutil.ToNullTime(now),
		Before:      now,
	})
	if err != nil {
		return 0, fmt.Errorf("cancel expired pending visits: %w", err)
	}
	if count > 0 {
		logger.Info().Int64("count", count).Msg("Cancelled unconfirmed visits")
	}
	return count, nil
}

// SendDueReminders emails every confirmed visit starting within the reminder
// lead time that has not been reminded yet. A visit is only marked once its
// email went out, so failures are retried on the next run. The mark is
// conditional on the start time that was read.
func (j BookingJobs) SendDueReminders(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	logger := zerolog.Ctx(ctx)

	if j.Sender == nil {
		logger.Debug().Msg("Reminder job skipped: email sender not configured")
		return 0, nil
	}

	now := j.now()
	rows, err := j.DB.Queries.ListVisitsNeedingReminder(ctx, dbgen.ListVisitsNeedingReminderParams{
		WindowStart: now,
		WindowEnd:   now.Add(j.ReminderLead),
	})
	if err != nil {
		return 0, fmt.Errorf("list visits needing reminder: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	org, err := models.LoadOrganization(ctx, j.DB.Queries, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load branding for reminders; using defaults")
	}

	sent := 0
	for _, row := range rows {
		visitLogger := logger.With().Int64("visit_id", row.ID).Logger()
		msg, err := email.BuildVisitReminder(email.VisitDetails{
			OrganizationName: org.Name,
			AccentColor:      org.AccentColor,
			UserName:         row.UserName,
			BuildingName:     row.BuildingName,
			PlaceName:        row.PlaceName,
			Start:            row.StartTime,
			End:              row.EndTime,
			Location:         models.LoadLocation(row.Timezone),
		})
		if err != nil {
			visitLogger.Error().Err(err).Msg("Failed to build visit reminder")
			continue
		}

		sendCtx, sendCancel := context.WithTimeout(ctx, reminderSendTimeout)
		err = j.Sender.Send(sendCtx, row.UserEmail, msg)
		sendCancel()
		if err != nil {
			visitLogger.Error().Err(err).Msg("Failed to send visit reminder")
			continue
		}

		marked, err := j.DB.Queries.MarkVisitReminderSent(ctx, dbgen.MarkVisitReminderSentParams{
			ReminderSentAt: apiutil.ToNullTime(now),
			ID:             row.ID,
			StartTime:      row.StartTime,
		})
		if err != nil {
			visitLogger.Error().Err(err).Msg("Failed to mark visit reminder as sent")
			continue
		}
		sent++
		if marked == 0 {
			// Rescheduled while sending; the new slot gets its own reminder.
			visitLogger.Info().Msg("Visit changed during reminder send; left unmarked")
		}
	}

	logger.Info().Int("sent", sent).Int("due", len(rows)).Msg("Visit reminders processed")
	return sent, nil
}
