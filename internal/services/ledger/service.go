// Package ledger owns the payment ledger and the per-method totals derived
// from it.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/events"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

type LedgerService struct {
	repo  *document.Repo
	bus   events.Bus
	now   func() time.Time
	newID func() string
}

type Option func(*LedgerService)

// WithBus announces every successful write on bus.
func WithBus(bus events.Bus) Option {
	return func(s *LedgerService) { s.bus = bus }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

func New(repo *document.Repo, opts ...Option) *LedgerService {
	s := &LedgerService{
		repo:  repo,
		bus:   events.Noop{},
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListPayments returns the ledger in insertion order.
func (s *LedgerService) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	doc, err := s.repo.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	return doc.Payments, nil
}

// GetTotals returns the totals as last written.
func (s *LedgerService) GetTotals(ctx context.Context) (domain.Totals, error) {
	doc, err := s.repo.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("get totals: %w", err)
	}

	return doc.Totals, nil
}

// RecordPayment validates the payment, appends it to the ledger and adds
// its rounded amount to the method total in the same write. An empty note
// is stored as null.
func (s *LedgerService) RecordPayment(ctx context.Context, amount float64, method domain.Method, note string) (Receipt, error) {
	rounded, err := s.validatePayment(amount, method)
	if err != nil {
		return Receipt{}, fmt.Errorf("record payment: %w", err)
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	var payment domain.Payment

	doc, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		payment = domain.Payment{
			ID:        s.newID(),
			Amount:    rounded,
			Method:    method,
			Note:      notePtr,
			CreatedAt: s.now().UTC(),
		}

		total := domain.AddCents(doc.Totals[method], rounded)
		if !domain.IsFinite(total) {
			return domain.Invalid(domain.CodeInvalidAmount, "amount would overflow the %s total", method)
		}

		doc.Payments = append(doc.Payments, payment)
		doc.Totals[method] = total

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("record payment: %w", err)
	}

	receipt := Receipt{Payment: payment, Totals: doc.Totals}

	slog.Info("payment recorded", "id", payment.ID, "method", method, "amount", rounded)
	events.Emit(s.bus, events.TopicPaymentRecorded, receipt)

	return receipt, nil
}

// ResetAll clears the ledger and zeroes every method total.
func (s *LedgerService) ResetAll(ctx context.Context) (domain.Totals, error) {
	doc, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		doc.Payments = []domain.Payment{}
		doc.Totals = s.repo.Methods().ZeroTotals()

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reset payments: %w", err)
	}

	slog.Info("payments reset")
	events.Emit(s.bus, events.TopicPaymentsReset, totalsEvent{Totals: doc.Totals})

	return doc.Totals, nil
}

// RecalcTotals rebuilds every total from the ledger and persists the
// result. Entries with a method outside the configured set are ignored.
func (s *LedgerService) RecalcTotals(ctx context.Context) (domain.Totals, error) {
	var drifted bool

	doc, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		fresh := domain.SumByMethod(doc.Payments, s.repo.Methods())
		drifted = !sameTotals(doc.Totals, fresh)
		doc.Totals = fresh

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recalc totals: %w", err)
	}

	if drifted {
		slog.Warn("totals differed from ledger and were rebuilt", "payments", len(doc.Payments))
	}

	events.Emit(s.bus, events.TopicTotalsRecalculated, totalsEvent{Totals: doc.Totals})

	return doc.Totals, nil
}

func (s *LedgerService) validatePayment(amount float64, method domain.Method) (float64, error) {
	if !domain.IsFinite(amount) || amount <= 0 {
		return 0, domain.Invalid(domain.CodeInvalidAmount, "amount must be a positive number")
	}

	rounded := domain.RoundCents(amount)
	if rounded <= 0 {
		return 0, domain.Invalid(domain.CodeInvalidAmount, "amount must be at least 0.01")
	}

	if !s.repo.Methods().Contains(method) {
		return 0, domain.Invalid(domain.CodeInvalidMethod, "method must be one of %s", s.repo.Methods())
	}

	return rounded, nil
}

func sameTotals(a, b domain.Totals) bool {
	if len(a) != len(b) {
		return false
	}

	for m, v := range a {
		w, ok := b[m]
		if !ok || v != w {
			return false
		}
	}

	return true
}
