package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"accountant/internal/core"
	"accountant/internal/ports"
)

// RenewalProcessorConfig holds configuration for the renewal processor
type RenewalProcessorConfig struct {
	// Interval is how often due subscriptions are checked (default: 1h)
	Interval time.Duration

	// Source names the publisher in records.changed events (default: billing-worker)
	Source string

	// Location decides the current business day (default: Asia/Dubai)
	Location *time.Location
}

// DefaultRenewalProcessorConfig returns sensible defaults
func DefaultRenewalProcessorConfig() RenewalProcessorConfig {
	return RenewalProcessorConfig{
		Interval: time.Hour,
		Source:   "billing-worker",
		Location: BusinessLocation(DefaultTimezone),
	}
}

// RenewalProcessor advances the stored next billing date of active
// subscriptions once it has elapsed. AutoRenew is informational and does not
// stop an active subscription from advancing.
type RenewalProcessor struct {
	store     ports.SubscriptionStore
	publisher ports.EventPublisher
	config    RenewalProcessorConfig
	now       func() time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRenewalProcessor creates a renewal processor. publisher may be nil.
func NewRenewalProcessor(store ports.SubscriptionStore, publisher ports.EventPublisher, config RenewalProcessorConfig) *RenewalProcessor {
	defaults := DefaultRenewalProcessorConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Source == "" {
		config.Source = defaults.Source
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	return &RenewalProcessor{
		store:     store,
		publisher: publisher,
		config:    config,
		now:       time.Now,
	}
}

// Renewal is one subscription whose billing date moved.
type Renewal struct {
	SubscriptionID string
	Previous       core.Date
	Next           core.Date
	Cycles         int
}

// PlanRenewals returns the renewals due as of asOf without applying them.
func PlanRenewals(subs []core.Subscription, asOf core.Date) ([]Renewal, []error) {
	var (
		plan []Renewal
		errs []error
	)
	for _, sub := range subs {
		next, cycles, err := sub.NextBillingOn(asOf)
		if err != nil {
			errs = append(errs, fmt.Errorf("subscription %s: %w", sub.ID, err))
			continue
		}
		if cycles == 0 {
			continue
		}
		plan = append(plan, Renewal{
			SubscriptionID: sub.ID,
			Previous:       sub.NextBillingDate,
			Next:           next,
			Cycles:         cycles,
		})
	}
	return plan, errs
}

// ProcessDue advances every elapsed active subscription and announces the
// change. It returns the number of subscriptions updated.
func (p *RenewalProcessor) ProcessDue(ctx context.Context, asOf core.Date) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	subs, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		return 0, ports.Unavailable("list subscriptions", err)
	}

	slog.InfoContext(ctx, "Processing subscription renewals",
		"total", len(subs),
		"processing_date", asOf.String())

	plan, errs := PlanRenewals(subs, asOf)
	for _, err := range errs {
		slog.ErrorContext(ctx, "Failed to project billing date", "error", err)
	}

	processed := 0
	for _, r := range plan {
		if err := p.store.UpdateNextBillingDate(ctx, r.SubscriptionID, r.Next); err != nil {
			slog.ErrorContext(ctx, "Failed to update next billing date",
				"subscription_id", r.SubscriptionID,
				"error", err)
			continue
		}
		processed++
		slog.InfoContext(ctx, "Advanced subscription billing date",
			"subscription_id", r.SubscriptionID,
			"previous", r.Previous.String(),
			"next", r.Next.String(),
			"cycles", r.Cycles)
	}

	if processed > 0 && p.publisher != nil {
		if err := p.publisher.PublishRecordsChanged(ctx, []core.EntityKind{core.KindSubscriptions}, p.config.Source); err != nil {
			// The store is already updated; consumers catch up on the next event.
			slog.WarnContext(ctx, "Failed to publish records changed", "error", err)
		}
	}

	slog.InfoContext(ctx, "Subscription renewal processing complete",
		"processed", processed,
		"total_checked", len(subs))

	return processed, nil
}

// Today returns the current business day.
func (p *RenewalProcessor) Today() core.Date {
	return core.DateOf(p.now().In(p.config.Location))
}

// Start begins the renewal loop. Returns an error if already running.
func (p *RenewalProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("renewal processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Renewal processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *RenewalProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Renewal processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Renewal processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *RenewalProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RenewalProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.tick(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *RenewalProcessor) tick(ctx context.Context) {
	if _, err := p.ProcessDue(ctx, p.Today()); err != nil {
		slog.ErrorContext(ctx, "Renewal run failed", "error", err)
	}
}
