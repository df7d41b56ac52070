package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mailer is the outbound mail transport.
type Mailer interface {
	SendExpiryAlert(ctx context.Context, toEmail, toName string, items []string) error
}

// Dispatcher sends one reminder per recipient batch.
type Dispatcher struct {
	mailer      Mailer
	concurrency int
	logger      *zap.Logger
}

func NewDispatcher(mailer Mailer, concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{mailer: mailer, concurrency: concurrency, logger: logger}
}

// Dispatch calls the mailer exactly once per batch. A failed send is logged and
// recorded; it never stops the remaining sends. Outcomes are sorted by recipient.
func (d *Dispatcher) Dispatch(ctx context.Context, batches map[string]*RecipientBatch) []Outcome {
	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(batches))
		g        errgroup.Group
	)
	g.SetLimit(d.concurrency)

	for _, batch := range batches {
		g.Go(func() error {
			out := d.send(ctx, batch)
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Recipient < outcomes[j].Recipient })
	return outcomes
}

func (d *Dispatcher) send(ctx context.Context, batch *RecipientBatch) (out Outcome) {
	out = Outcome{Recipient: batch.Email, Items: len(batch.Items)}
	defer func() {
		if r := recover(); r != nil {
			out.Success = false
			out.Error = fmt.Sprintf("panic: %v", r)
			d.logger.Error("expiry alert panicked", zap.String("recipient", batch.Email), zap.Any("panic", r))
		}
	}()

	d.logger.Info("sending expiry alert", zap.String("recipient", batch.Email), zap.Strings("items", batch.Items))
	if err := d.mailer.SendExpiryAlert(ctx, batch.Email, batch.Name, batch.Items); err != nil {
		d.logger.Error("expiry alert failed", zap.String("recipient", batch.Email), zap.Error(err))
		out.Error = err.Error()
		return out
	}
	out.Success = true
	return out
}
