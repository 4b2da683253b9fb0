package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reikningar/internal/core"
	"reikningar/internal/gateway/memory"
	"reikningar/internal/tabular"
)

type fakeText struct {
	text string
	err  error
}

func (f fakeText) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f.text, f.err
}

type sheetSource struct {
	sheet *tabular.Sheet
	err   error
}

func (s sheetSource) Read(ctx context.Context) (*tabular.Sheet, error) {
	return s.sheet, s.err
}

func newService(t *testing.T, text string) (*IngestService, *State) {
	t.Helper()
	state := NewState(memory.New())
	return NewIngestService(state, IngestOptions{PDF: fakeText{text: text}}), state
}

const onBill = "Orka náttúrunnar\nreikningar@on.is\nGjalddagi: 5. janúar 2024\nSamtals: 12.345 kr.\n"

func TestIngestPDF_StoresAndDedupes(t *testing.T) {
	svc, state := newService(t, onBill)
	ctx := context.Background()

	res, err := svc.IngestPDF(ctx, "jan.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, "Gjalddagi", res.DateRule)
	assert.Equal(t, core.BillID("reikningar@on.is", "05.01.2024"), res.BillID)

	snap := state.Snapshot()
	require.Len(t, snap.Bills, 1)
	assert.Equal(t, "05.01.2024", snap.Bills[0].Date)
	assert.True(t, decimal.NewFromInt(12345).Equal(snap.Bills[0].Amount.Decimal))

	res, err = svc.IngestPDF(ctx, "jan-copy.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Len(t, state.Snapshot().Bills, 1)
}

func TestIngestPDF_DiscardsEmptyDraft(t *testing.T) {
	svc, state := newService(t, "nothing useful here")
	res, err := svc.IngestPDF(context.Background(), "blank.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Discarded)
	assert.Empty(t, state.Snapshot().Bills)
}

func TestIngestPDF_PartialStored(t *testing.T) {
	svc, state := newService(t, "Samtals: 4.990 kr.")
	res, err := svc.IngestPDF(context.Background(), "partial.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	b := state.Snapshot().Bills[0]
	assert.Equal(t, core.UnknownCreditor, b.Creditor)
	assert.False(t, b.HasDate())
}

func TestIngestPDF_TextFailure(t *testing.T) {
	state := NewState(memory.New())
	svc := NewIngestService(state, IngestOptions{PDF: fakeText{err: core.ErrMalformedInput}})
	_, err := svc.IngestPDF(context.Background(), "bad.pdf", nil)
	assert.ErrorIs(t, err, core.ErrMalformedInput)
}

func TestIngestStatement(t *testing.T) {
	svc, state := newService(t, "")
	sheet := &tabular.Sheet{
		Name:    "jan",
		Headers: []string{tabular.HeaderDate, tabular.HeaderText, tabular.HeaderAmount, tabular.HeaderBalance, tabular.HeaderCategory},
		Rows: []tabular.Row{
			{tabular.HeaderDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), tabular.HeaderText: "BONUS", tabular.HeaderAmount: -4590.5, tabular.HeaderBalance: 1000.0, tabular.HeaderCategory: "Matvara"},
			{tabular.HeaderDate: "2024-01-06", tabular.HeaderText: "Laun", tabular.HeaderAmount: "500000", tabular.HeaderBalance: nil, tabular.HeaderCategory: nil},
			{tabular.HeaderDate: "2024-01-07", tabular.HeaderText: "broken", tabular.HeaderAmount: nil},
			{tabular.HeaderDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), tabular.HeaderText: "BONUS", tabular.HeaderAmount: -4590.5, tabular.HeaderBalance: 999.0},
		},
	}

	res, err := svc.IngestStatement(context.Background(), "jan.xlsx", sheetSource{sheet: sheet})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Duplicates, "same date, creditor and amount collide regardless of balance")
	assert.Equal(t, 1, res.Rejected)

	txs := state.Snapshot().Transactions
	require.Len(t, txs, 2)
	assert.Equal(t, "2024-01-05", txs[0].TransDate)
	assert.Equal(t, "Matvara", txs[0].CategoryOr(""))
	assert.Nil(t, txs[1].Category)
}

func TestIngestStatement_MissingColumn(t *testing.T) {
	svc, _ := newService(t, "")
	sheet := &tabular.Sheet{Headers: []string{tabular.HeaderDate, tabular.HeaderText}}
	_, err := svc.IngestStatement(context.Background(), "bad.xlsx", sheetSource{sheet: sheet})
	assert.ErrorIs(t, err, core.ErrMalformedInput)
}

func TestIngestFile_Dispatch(t *testing.T) {
	svc, _ := newService(t, onBill)
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "Reikningur.PDF")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0o644))
	res, err := svc.IngestFile(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, KindBill, res.Kind)
	assert.Equal(t, "Reikningur.PDF", res.Document)

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = svc.IngestFile(context.Background(), txtPath)
	assert.ErrorIs(t, err, core.ErrMalformedInput)

	_, err = svc.IngestFile(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestManualBillLifecycle(t *testing.T) {
	svc, state := newService(t, "")
	ctx := context.Background()

	b, inserted, err := svc.AddManualBill(ctx, ManualBill{Creditor: " Hringdu ", Date: "2024-02-01", Amount: "4.990,00"})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "Hringdu", b.Creditor)
	assert.Equal(t, "01.02.2024", b.Date)

	_, inserted, err = svc.AddManualBill(ctx, ManualBill{Creditor: "Hringdu", Date: "1. febrúar 2024", Amount: "5000"})
	require.NoError(t, err)
	assert.False(t, inserted, "same creditor and date is the same bill")

	require.NoError(t, svc.SetRecurring(ctx, b.ID, true))
	assert.True(t, state.Snapshot().Bills[0].Recurring)

	require.NoError(t, svc.DeleteBill(ctx, b.ID))
	assert.Empty(t, state.Snapshot().Bills)

	err = svc.DeleteBill(ctx, b.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.ErrorIs(t, svc.SetRecurring(ctx, "nope", true), core.ErrNotFound)
}

func TestAddManualBill_Invalid(t *testing.T) {
	svc, _ := newService(t, "")
	cases := []ManualBill{
		{Creditor: "x", Date: "yesterday", Amount: "1"},
		{Creditor: "x", Date: "01.01.2024", Amount: "lots"},
		{Creditor: "", Date: "01.01.2024", Amount: "1"},
		{Creditor: "x", Date: "01.01.2024", Amount: "-5"},
	}
	for _, in := range cases {
		_, _, err := svc.AddManualBill(context.Background(), in)
		assert.ErrorIs(t, err, core.ErrMalformedInput, "%+v", in)
	}
}

func TestBillQuery(t *testing.T) {
	amt := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }
	bills := []core.Bill{
		core.NewBill("Vodafone", "01.03.2024", amt(30), true),
		core.NewBill("on.is", "01.01.2024", amt(100), false),
		core.NewBill("Unknown", "", amt(5), false),
		core.NewBill("vodafone", "01.02.2024", amt(20), true),
	}

	yes := true
	got, err := BillQuery{Creditor: "VODA", Recurring: &yes, SortBy: SortByDate}.Apply(bills)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01.02.2024", got[0].Date)

	got, err = BillQuery{SortBy: SortByDate, Desc: true}.Apply(bills)
	require.NoError(t, err)
	assert.Equal(t, "01.03.2024", got[0].Date)
	assert.Equal(t, "", got[3].Date)

	got, err = BillQuery{SortBy: SortByAmount}.Apply(bills)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", got[0].Creditor)

	got, err = BillQuery{}.Apply(bills)
	require.NoError(t, err)
	assert.Equal(t, bills, got)

	_, err = BillQuery{SortBy: "colour"}.Apply(bills)
	assert.ErrorIs(t, err, core.ErrMalformedInput)
}

func TestResolveBillID(t *testing.T) {
	bills := []core.Bill{
		{ID: "abc123"},
		{ID: "abd456"},
		{ID: "ff"},
	}
	id, err := ResolveBillID(bills, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	id, err = ResolveBillID(bills, "FF")
	require.NoError(t, err)
	assert.Equal(t, "ff", id)

	_, err = ResolveBillID(bills, "ab")
	assert.ErrorIs(t, err, core.ErrMalformedInput)
	_, err = ResolveBillID(bills, "zz")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = ResolveBillID(bills, " ")
	assert.ErrorIs(t, err, core.ErrMalformedInput)
}

func TestStateVersionAdvances(t *testing.T) {
	state := NewState(memory.New())
	assert.Zero(t, state.Snapshot().Version)
	require.NoError(t, state.Refresh(context.Background()))
	require.NoError(t, state.Refresh(context.Background()))
	assert.Equal(t, uint64(2), state.Snapshot().Version)
}

// stallingStore holds the first ListBills call after it has read the store
// until release is closed.
type stallingStore struct {
	*memory.Store
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func (s *stallingStore) ListBills(ctx context.Context) ([]core.Bill, error) {
	bills, err := s.Store.ListBills(ctx)
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
	return bills, err
}

func TestStateRefreshOverlapKeepsNewestLists(t *testing.T) {
	ctx := context.Background()
	store := &stallingStore{Store: memory.New(), listed: make(chan struct{}), release: make(chan struct{})}
	state := NewState(store)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- state.Refresh(ctx)
	}()
	<-store.listed

	bill := core.NewBill("billing@on.is", "05.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(100)), false)
	_, err := store.UpsertBill(ctx, bill)
	require.NoError(t, err)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- state.Refresh(ctx)
	}()
	close(store.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap := state.Snapshot()
	assert.Equal(t, uint64(2), snap.Version)
	require.Len(t, snap.Bills, 1)
	assert.Equal(t, bill.ID, snap.Bills[0].ID)
}
