package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/events"
	"github.com/saminkc999/coinledger/internal/repos/document"
	"github.com/saminkc999/coinledger/internal/repos/document/memory"
	"github.com/saminkc999/coinledger/internal/services/ledger"
)

var fixedNow = time.Date(2024, 11, 2, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))

type fixture struct {
	store *memory.Store
	svc   *ledger.LedgerService
	bus   *events.Recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memory.New()
	repo := document.NewRepo(store, domain.DefaultMethods(), 0)

	err := repo.Init(t.Context())
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	seq := 0
	bus := &events.Recorder{}

	svc := ledger.New(repo,
		ledger.WithBus(bus),
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("p-%d", seq)
		}),
	)

	return fixture{store: store, svc: svc, bus: bus}
}

func (f fixture) corruptTotals(t *testing.T, totals domain.Totals) {
	t.Helper()

	doc, ver, err := f.store.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	doc.Totals = totals

	_, err = f.store.Save(t.Context(), doc, ver)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
}

func (f fixture) assertConserved(t *testing.T) {
	t.Helper()

	ctx := t.Context()

	payments, err := f.svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	totals, err := f.svc.GetTotals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	want := domain.SumByMethod(payments, domain.DefaultMethods())
	for _, m := range domain.DefaultMethods().Methods() {
		if totals[m] != want[m] {
			t.Fatalf("totals[%s]=%v, ledger sums to %v", m, totals[m], want[m])
		}
	}
}

func TestRecordPayment_FirstPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	receipt, err := f.svc.RecordPayment(t.Context(), 25, domain.MethodCashApp, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	p := receipt.Payment
	if p.ID != "p-1" || p.Amount != 25 || p.Method != domain.MethodCashApp {
		t.Fatalf("unexpected payment: %+v", p)
	}
	if p.Note != nil {
		t.Fatalf("empty note must be stored as null, got %q", *p.Note)
	}
	if !p.CreatedAt.Equal(fixedNow) || p.CreatedAt.Location() != time.UTC {
		t.Fatalf("createdAt: want %v in UTC, got %v", fixedNow, p.CreatedAt)
	}

	want := domain.Totals{domain.MethodCashApp: 25, domain.MethodPayPal: 0, domain.MethodChime: 0}
	for m, v := range want {
		if receipt.Totals[m] != v {
			t.Fatalf("totals[%s]: want %v, got %v", m, v, receipt.Totals[m])
		}
	}

	payments, err := f.svc.ListPayments(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 1 || payments[0].ID != "p-1" {
		t.Fatalf("ledger: %+v", payments)
	}

	if got := f.bus.Topics(); len(got) != 1 || got[0] != events.TopicPaymentRecorded {
		t.Fatalf("events: %v", got)
	}
}

func TestRecordPayment_RoundsAndKeepsNote(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	tests := []struct {
		amount float64
		want   float64
	}{
		{amount: 25.004, want: 25.00},
		{amount: 25.005, want: 25.01},
		{amount: 0.1, want: 0.1},
		{amount: 0.2, want: 0.2},
	}

	for _, tt := range tests {
		receipt, err := f.svc.RecordPayment(t.Context(), tt.amount, domain.MethodPayPal, "weekly top-up")
		if err != nil {
			t.Fatalf("record %v: %v", tt.amount, err)
		}
		if receipt.Payment.Amount != tt.want {
			t.Fatalf("amount %v: want %v, got %v", tt.amount, tt.want, receipt.Payment.Amount)
		}
		if receipt.Payment.Note == nil || *receipt.Payment.Note != "weekly top-up" {
			t.Fatalf("note lost: %+v", receipt.Payment)
		}
	}

	totals, err := f.svc.GetTotals(t.Context())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[domain.MethodPayPal] != 50.31 {
		t.Fatalf("paypal total: want 50.31, got %v", totals[domain.MethodPayPal])
	}

	f.assertConserved(t)
}

func TestRecordPayment_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount float64
		method domain.Method
		code   domain.ErrorCode
	}{
		{name: "zero", amount: 0, method: domain.MethodCashApp, code: domain.CodeInvalidAmount},
		{name: "negative", amount: -5, method: domain.MethodCashApp, code: domain.CodeInvalidAmount},
		{name: "nan", amount: math.NaN(), method: domain.MethodCashApp, code: domain.CodeInvalidAmount},
		{name: "inf", amount: math.Inf(1), method: domain.MethodCashApp, code: domain.CodeInvalidAmount},
		{name: "rounds to zero", amount: 0.004, method: domain.MethodCashApp, code: domain.CodeInvalidAmount},
		{name: "unknown method", amount: 10, method: "venmo", code: domain.CodeInvalidMethod},
		{name: "method case matters", amount: 10, method: "CashApp", code: domain.CodeInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)

			_, err := f.svc.RecordPayment(t.Context(), 12.5, domain.MethodChime, "")
			if err != nil {
				t.Fatalf("seed: %v", err)
			}

			_, before, _ := f.store.Load(t.Context())

			_, err = f.svc.RecordPayment(t.Context(), tt.amount, tt.method, "x")

			verr, ok := domain.AsValidation(err)
			if !ok {
				t.Fatalf("want validation error, got %v", err)
			}
			if verr.Code != tt.code {
				t.Fatalf("code: want %s, got %s", tt.code, verr.Code)
			}

			_, after, _ := f.store.Load(t.Context())
			if after != before {
				t.Fatalf("rejected payment wrote the document: version %d -> %d", before, after)
			}

			payments, _ := f.svc.ListPayments(t.Context())
			if len(payments) != 1 {
				t.Fatalf("ledger changed: %+v", payments)
			}
		})
	}
}

func TestResetAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	for _, m := range domain.DefaultMethods().Methods() {
		_, err := f.svc.RecordPayment(t.Context(), 10, m, "")
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	totals, err := f.svc.ResetAll(t.Context())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, m := range domain.DefaultMethods().Methods() {
		if v, ok := totals[m]; !ok || v != 0 {
			t.Fatalf("totals[%s] after reset: %v (present=%v)", m, v, ok)
		}
	}

	payments, err := f.svc.ListPayments(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("ledger not cleared: %+v", payments)
	}

	topics := f.bus.Topics()
	if topics[len(topics)-1] != events.TopicPaymentsReset {
		t.Fatalf("last event: %v", topics)
	}

	f.assertConserved(t)
}

func TestRecalcTotals_HealsCorruptedTotals(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.RecordPayment(t.Context(), 100, domain.MethodPayPal, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	f.corruptTotals(t, domain.Totals{domain.MethodCashApp: 999, domain.MethodPayPal: 1, domain.MethodChime: -4})

	totals, err := f.svc.RecalcTotals(t.Context())
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}

	want := domain.Totals{domain.MethodCashApp: 0, domain.MethodPayPal: 100, domain.MethodChime: 0}
	for m, v := range want {
		if totals[m] != v {
			t.Fatalf("totals[%s]: want %v, got %v", m, v, totals[m])
		}
	}

	stored, err := f.svc.GetTotals(t.Context())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if stored[domain.MethodPayPal] != 100 || stored[domain.MethodCashApp] != 0 {
		t.Fatalf("recalculated totals not persisted: %v", stored)
	}
}

func TestRecalcTotals_MatchesIncrementalAndIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	amounts := []float64{0.1, 0.2, 0.3, 19.99, 0.01, 7.35, 1000.005, 33.33}
	for i, a := range amounts {
		m := domain.DefaultMethods().Methods()[i%3]

		_, err := f.svc.RecordPayment(t.Context(), a, m, "")
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	incremental, err := f.svc.GetTotals(t.Context())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	first, err := f.svc.RecalcTotals(t.Context())
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}

	second, err := f.svc.RecalcTotals(t.Context())
	if err != nil {
		t.Fatalf("recalc again: %v", err)
	}

	for _, m := range domain.DefaultMethods().Methods() {
		if first[m] != incremental[m] {
			t.Fatalf("recalc differs from incremental for %s: %v vs %v", m, first[m], incremental[m])
		}
		if second[m] != first[m] {
			t.Fatalf("recalc not idempotent for %s: %v vs %v", m, first[m], second[m])
		}
	}
}

func TestRecalcTotals_IgnoresRetiredMethods(t *testing.T) {
	t.Parallel()

	store := memory.New()

	doc := domain.NewDocument(domain.DefaultMethods())
	doc.Payments = []domain.Payment{
		{ID: "a", Amount: 5, Method: domain.MethodChime},
		{ID: "b", Amount: 7, Method: "venmo"},
	}

	_, err := store.Save(t.Context(), doc, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := ledger.New(document.NewRepo(store, domain.DefaultMethods(), 0))

	totals, err := svc.RecalcTotals(t.Context())
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}

	if totals[domain.MethodChime] != 5 {
		t.Fatalf("chime: want 5, got %v", totals[domain.MethodChime])
	}
	if _, ok := totals["venmo"]; ok {
		t.Fatalf("retired method resurrected in totals: %v", totals)
	}
}

type brokenStore struct{ document.Store }

var errDown = errors.New("connection refused")

func (brokenStore) Load(context.Context) (domain.Document, document.Version, error) {
	return domain.Document{}, 0, errDown
}

func TestStorageFailures(t *testing.T) {
	t.Parallel()

	svc := ledger.New(document.NewRepo(brokenStore{}, domain.DefaultMethods(), 0))
	ctx := t.Context()

	_, err := svc.ListPayments(ctx)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("list: want ErrStorage, got %v", err)
	}

	_, err = svc.RecordPayment(ctx, 10, domain.MethodCashApp, "")
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("record: want ErrStorage, got %v", err)
	}

	_, err = svc.RecordPayment(ctx, -1, domain.MethodCashApp, "")
	if _, ok := domain.AsValidation(err); !ok {
		t.Fatalf("validation must run before the store is read, got %v", err)
	}

	_, err = svc.ResetAll(ctx)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("reset: want ErrStorage, got %v", err)
	}

	_, err = svc.RecalcTotals(ctx)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("recalc: want ErrStorage, got %v", err)
	}
}

func TestRecordPayment_RejectsTotalOverflow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.RecordPayment(t.Context(), 1e308, domain.MethodCashApp, "")
	if err != nil {
		t.Fatalf("first large payment: %v", err)
	}

	_, before, _ := f.store.Load(t.Context())

	_, err = f.svc.RecordPayment(t.Context(), 1e308, domain.MethodCashApp, "")

	verr, ok := domain.AsValidation(err)
	if !ok || verr.Code != domain.CodeInvalidAmount {
		t.Fatalf("want InvalidAmount, got %v", err)
	}
	if errors.Is(err, domain.ErrStorage) {
		t.Fatalf("overflow reported as storage failure: %v", err)
	}

	_, after, _ := f.store.Load(t.Context())
	if after != before {
		t.Fatalf("rejected payment wrote the document: version %d -> %d", before, after)
	}

	payments, err := f.svc.ListPayments(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("ledger changed: %d payments", len(payments))
	}

	totals, err := f.svc.GetTotals(t.Context())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[domain.MethodCashApp] != 1e308 {
		t.Fatalf("cashapp total changed: %v", totals[domain.MethodCashApp])
	}

	f.assertConserved(t)
}

func TestRecordPayment_ConcurrentWritersConserveTotals(t *testing.T) {
	t.Parallel()

	store := memory.New()
	repo := document.NewRepo(store, domain.DefaultMethods(), 100)

	err := repo.Init(t.Context())
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	f := fixture{store: store, svc: ledger.New(repo)}

	const (
		writers   = 8
		perWriter = 5
	)

	methods := domain.DefaultMethods().Methods()
	errCh := make(chan error, writers*perWriter)

	var wg sync.WaitGroup

	for i := range writers {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			for j := range perWriter {
				_, err := f.svc.RecordPayment(t.Context(), 0.1*float64(j+1), methods[n%len(methods)], "")
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	payments, err := f.svc.ListPayments(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != writers*perWriter {
		t.Fatalf("lost payments: want %d, got %d", writers*perWriter, len(payments))
	}

	seen := make(map[string]struct{}, len(payments))
	for _, p := range payments {
		if _, dup := seen[p.ID]; dup {
			t.Fatalf("duplicate payment id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	f.assertConserved(t)
}
