package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"
	"FoodExpiryTracker/internal/food"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service runs expiry notification passes.
type Service struct {
	scanner    *Scanner
	dispatcher *Dispatcher
	mailer     Mailer
	ledger     Ledger
	format     DescriptionFormatter
	loc        *time.Location
	dayOffset  int
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(store ItemStore, mailer Mailer, ledger Ledger, cfg *config.NotifyConfig, logger *zap.Logger) *Service {
	format := NewDescriptionFormatter(cfg)
	return &Service{
		scanner:    NewScanner(store, format, logger),
		dispatcher: NewDispatcher(mailer, cfg.SendConcurrency, logger),
		mailer:     mailer,
		ledger:     ledger,
		format:     format,
		loc:        cfg.Location,
		dayOffset:  cfg.DayOffset,
		now:        time.Now,
		logger:     logger,
	}
}

// RunPass computes today's window (shifted by the configured day offset), scans,
// dispatches and returns a report. Only window, store and ledger-read failures
// return an error; individual send failures are reported in the outcomes.
func (s *Service) RunPass(ctx context.Context, trigger string) (*Report, error) {
	started := s.now()
	w, err := ComputeWindow(started, s.dayOffset, s.loc)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("trigger", trigger), zap.String("window_date", w.DateKey()))

	scan, err := s.scanner.Scan(ctx, w)
	if err != nil {
		return nil, err
	}

	suppressed, err := s.dropNotified(ctx, w, scan.Batches)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Trigger:    trigger,
		Window:     w,
		StartedAt:  started,
		Recipients: len(scan.Batches),
		Skipped:    scan.Skipped,
		Suppressed: suppressed,
	}
	if len(scan.Batches) == 0 {
		log.Info("no food items expiring in window", zap.Int("skipped", scan.Skipped), zap.Int("suppressed", suppressed))
		report.Outcomes = []Outcome{}
		report.FinishedAt = s.now()
		return report, nil
	}

	report.Outcomes = s.dispatcher.Dispatch(ctx, scan.Batches)
	for _, out := range report.Outcomes {
		if !out.Success {
			report.Failed++
			continue
		}
		report.Sent++
		batch := scan.Batches[out.Recipient]
		if err := s.ledger.Record(ctx, w.DateKey(), out.Recipient, batch.ItemIDs); err != nil {
			log.Warn("failed to record notification", zap.String("recipient", out.Recipient), zap.Error(err))
		}
	}
	report.FinishedAt = s.now()

	log.Info("expiry notification pass finished",
		zap.Int("recipients", report.Recipients),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("suppressed", report.Suppressed),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// dropNotified removes items the ledger already holds for the window date and
// deletes batches left empty. It returns the number of items removed.
func (s *Service) dropNotified(ctx context.Context, w Window, batches map[string]*RecipientBatch) (int, error) {
	var ids []primitive.ObjectID
	for _, b := range batches {
		ids = append(ids, b.ItemIDs...)
	}
	seen, err := s.ledger.Notified(ctx, w.DateKey(), ids)
	if err != nil {
		return 0, err
	}
	if len(seen) == 0 {
		return 0, nil
	}

	removed := 0
	for email, b := range batches {
		kept := &RecipientBatch{Email: b.Email, Name: b.Name}
		for i, id := range b.ItemIDs {
			if seen[id] {
				removed++
				continue
			}
			kept.Items = append(kept.Items, b.Items[i])
			kept.ItemIDs = append(kept.ItemIDs, id)
		}
		if len(kept.ItemIDs) == 0 {
			delete(batches, email)
			continue
		}
		batches[email] = kept
	}
	return removed, nil
}

// SendAdHoc sends one reminder for caller-supplied items, formatted with the same
// description policy as scheduled passes.
func (s *Service) SendAdHoc(ctx context.Context, req SendEmailRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required.Error("Email and items are required."), is.EmailFormat),
		validation.Field(&req.Items, validation.Required.Error("Email and items are required.")),
	)
	if err != nil {
		return apperr.FromValidation(err)
	}

	lines := make([]string, 0, len(req.Items))
	for i, item := range req.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return apperr.NewValidationError(fmt.Sprintf("items[%d].name", i), "cannot be blank")
		}
		expiry, err := food.ParseDate(strings.TrimSpace(item.ExpiryDate), s.loc)
		if err != nil {
			return apperr.NewValidationError(fmt.Sprintf("items[%d].expiryDate", i), err.Error())
		}
		lines = append(lines, s.format(name, expiry))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultRecipientName
	}
	s.logger.Info("sending ad-hoc expiry alert", zap.String("recipient", req.Email), zap.Strings("items", lines))
	return s.mailer.SendExpiryAlert(ctx, req.Email, name, lines)
}
