package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"accountant/internal/core"
	"accountant/internal/decode"
	"accountant/internal/ports"
)

var ErrNotFound = errors.New("record not found")

// Store keeps a snapshot of domain records in memory.
type Store struct {
	mu       sync.RWMutex
	snap     core.Snapshot
	rejected []decode.Rejection
}

func New(s core.Snapshot) *Store {
	return &Store{snap: s}
}

// NewFromDir seeds the store from <kind>.json files in base. Missing files
// leave the kind empty; rows that fail validation are kept aside and listed
// by Rejections.
func NewFromDir(base string, d *decode.Decoder) (*Store, error) {
	st := &Store{}
	for _, kind := range core.AllKinds() {
		data, err := os.ReadFile(filepath.Join(base, string(kind)+".json"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", kind, err)
		}
		rejected, err := decode.Into(d, &st.snap, kind, data)
		if err != nil {
			return nil, err
		}
		st.rejected = append(st.rejected, rejected...)
	}
	return st, nil
}

// Rejections returns the rows skipped while seeding.
func (s *Store) Rejections() []decode.Rejection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rejected)
}

// LoadSnapshot returns a copy of the selected record kinds.
func (s *Store) LoadSnapshot(ctx context.Context, f ports.Filter) (*core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.Unavailable("memory load", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &core.Snapshot{}
	if f.Includes(core.KindClients) {
		out.Clients = slices.Clone(s.snap.Clients)
	}
	if f.Includes(core.KindProjects) {
		out.Projects = slices.Clone(s.snap.Projects)
	}
	if f.Includes(core.KindInvoices) {
		out.Invoices = slices.Clone(s.snap.Invoices)
	}
	if f.Includes(core.KindInvoiceItems) {
		out.InvoiceItems = slices.Clone(s.snap.InvoiceItems)
	}
	if f.Includes(core.KindPayments) {
		out.Payments = slices.Clone(s.snap.Payments)
	}
	if f.Includes(core.KindQuotes) {
		out.Quotes = slices.Clone(s.snap.Quotes)
	}
	if f.Includes(core.KindQuoteItems) {
		out.QuoteItems = slices.Clone(s.snap.QuoteItems)
	}
	if f.Includes(core.KindCards) {
		out.Cards = slices.Clone(s.snap.Cards)
	}
	if f.Includes(core.KindExpenseCategories) {
		out.ExpenseCategories = slices.Clone(s.snap.ExpenseCategories)
	}
	if f.Includes(core.KindExpenses) {
		out.Expenses = slices.Clone(s.snap.Expenses)
	}
	if f.Includes(core.KindSubscriptions) {
		out.Subscriptions = slices.Clone(s.snap.Subscriptions)
	}
	if f.Includes(core.KindContracts) {
		out.Contracts = slices.Clone(s.snap.Contracts)
	}
	return out, nil
}

// ListSubscriptions returns every stored subscription.
func (s *Store) ListSubscriptions(_ context.Context) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.snap.Subscriptions), nil
}

// UpdateNextBillingDate moves a subscription's next billing date.
func (s *Store) UpdateNextBillingDate(_ context.Context, id string, next core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Subscriptions {
		if s.snap.Subscriptions[i].ID == id {
			s.snap.Subscriptions[i].NextBillingDate = next
			return nil
		}
	}
	return fmt.Errorf("subscription %s: %w", id, ErrNotFound)
}
