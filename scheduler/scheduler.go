// Package scheduler runs the daily reminder job: it finds tasks due
// tomorrow and emails each owner one summary.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coreybb/mylist/delivery"
	"github.com/coreybb/mylist/models"
	"github.com/coreybb/mylist/webutil"
)

const (
	DefaultSendTimeout = 30 * time.Second
	DefaultRunTimeout  = 10 * time.Minute

	successBody = "Notifications sent successfully"
)

// ReminderSource lists the reminder rows for tasks due on a given day.
// *datastore.ReminderRepository satisfies it.
type ReminderSource interface {
	GetRemindersDueOn(ctx context.Context, day models.Date) ([]models.Reminder, error)
}

// Recipient is one email address and the descriptions of its tasks due
// tomorrow, in query order.
type Recipient struct {
	Email        string
	Descriptions []string
}

// Report summarises one run.
type Report struct {
	RunID      string      `json:"run_id"`
	Day        models.Date `json:"day"`
	Recipients int         `json:"recipients"`
	Sent       int         `json:"sent"`
	Failed     int         `json:"failed"`
}

// Result is the outcome of a run in the shape the job entry points return.
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Options tunes a Scheduler. Zero values select the defaults.
type Options struct {
	Location    *time.Location
	SendTimeout time.Duration
	RunTimeout  time.Duration
	Now         func() time.Time
}

type Scheduler struct {
	reminders   ReminderSource
	transport   delivery.MailTransport
	logger      *zap.Logger
	location    *time.Location
	sendTimeout time.Duration
	runTimeout  time.Duration
	now         func() time.Time
}

func New(reminders ReminderSource, transport delivery.MailTransport, logger *zap.Logger, opts Options) *Scheduler {
	s := &Scheduler{
		reminders:   reminders,
		transport:   transport,
		logger:      logger,
		location:    opts.Location,
		sendTimeout: opts.SendTimeout,
		runTimeout:  opts.RunTimeout,
		now:         opts.Now,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.sendTimeout <= 0 {
		s.sendTimeout = DefaultSendTimeout
	}
	if s.runTimeout <= 0 {
		s.runTimeout = DefaultRunTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Tomorrow is the calendar day after today in the scheduler's location.
func (s *Scheduler) Tomorrow() models.Date {
	return models.NewDate(s.now().In(s.location)).AddDays(1)
}

// Run sends one reminder per recipient with tasks due tomorrow. A failed
// send is logged and the remaining recipients are still attempted; the
// returned error joins every send failure.
func (s *Scheduler) Run(ctx context.Context) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	report := Report{RunID: uuid.NewString(), Day: s.Tomorrow()}
	logger := s.logger.With(
		zap.String("run_id", report.RunID),
		zap.Stringer("day", report.Day),
		zap.String("transport", s.transport.Type()),
	)

	reminders, err := s.reminders.GetRemindersDueOn(ctx, report.Day)
	if err != nil {
		logger.Error("Failed to load reminders", zap.Error(err))
		return report, fmt.Errorf("failed to load reminders for %s: %w", report.Day, err)
	}

	recipients := GroupByRecipient(reminders)
	report.Recipients = len(recipients)
	logger.Info("Notification run started", zap.Int("recipients", len(recipients)), zap.Int("tasks", len(reminders)))

	var errs []error
	for _, rcpt := range recipients {
		if err := s.notify(ctx, rcpt); err != nil {
			report.Failed++
			errs = append(errs, err)
			logger.Error("Failed to send reminder",
				zap.String("email", rcpt.Email),
				zap.Int("tasks", len(rcpt.Descriptions)),
				zap.Error(err),
			)
			continue
		}
		report.Sent++
	}

	logger.Info("Notification run finished", zap.Int("sent", report.Sent), zap.Int("failed", report.Failed))
	return report, errors.Join(errs...)
}

func (s *Scheduler) notify(ctx context.Context, rcpt Recipient) error {
	msg, err := delivery.ComposeReminder(rcpt.Email, rcpt.Descriptions)
	if err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.transport.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("reminder to %s: %w", rcpt.Email, err)
	}
	return nil
}

// RunResult runs the job and reports it as a status code and message.
func (s *Scheduler) RunResult(ctx context.Context) Result {
	if _, err := s.Run(ctx); err != nil {
		return Result{
			StatusCode: http.StatusInternalServerError,
			Body:       "Error sending notifications: " + err.Error(),
		}
	}
	return Result{StatusCode: http.StatusOK, Body: successBody}
}

// HandleTick triggers a run over HTTP, for an external cron service.
func (s *Scheduler) HandleTick(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Notification run triggered via HTTP")
	result := s.RunResult(r.Context())
	webutil.RespondWithJSON(w, result.StatusCode, result)
}

// GroupByRecipient collects descriptions per email, keeping the first-seen
// order of emails and the input order of descriptions.
func GroupByRecipient(reminders []models.Reminder) []Recipient {
	index := make(map[string]int)
	var recipients []Recipient
	for _, rem := range reminders {
		i, ok := index[rem.Email]
		if !ok {
			i = len(recipients)
			index[rem.Email] = i
			recipients = append(recipients, Recipient{Email: rem.Email})
		}
		recipients[i].Descriptions = append(recipients[i].Descriptions, rem.Description)
	}
	return recipients
}
