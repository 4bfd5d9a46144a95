package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dinheiro/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostingRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := ledger.Posting{
		ID:          "p1",
		From:        &ledger.AccountRef{Type: ledger.InvestmentAccount, ID: "broker"},
		To:          &ledger.AccountRef{Type: ledger.BankAccount, ID: "checking"},
		Amount:      ledger.M(580, "EUR"),
		Date:        ledger.NewDate(2024, time.June, 3),
		Status:      ledger.Processed,
		Category:    ledger.CategoryTransfer,
		CategoryID:  "invest",
		TagIDs:      []string{"t1", "t2"},
		Description: "Sell 40 ACME",
		Notes:       "rebalancing",
		PaymentType: ledger.OneTime,
		Sale: &ledger.SaleMetadata{
			Symbol:    "ACME",
			AssetType: "stock",
			Quantity:  ledger.Q(40),
			Principal: ledger.M(400, "EUR").Decimal(),
			Gross:     ledger.M(600, "EUR").Decimal(),
			Tax:       ledger.M(20, "EUR").Decimal(),
			Profit:    ledger.M(180, "EUR").Decimal(),
		},
	}
	require.NoError(t, store.CreatePosting(ctx, p))

	got, err := store.ListPostings(ctx, ledger.PostingFilter{AccountID: "checking"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.True(t, got[0].Amount.Equal(p.Amount))
	require.Equal(t, "rebalancing", got[0].Notes)
	require.Equal(t, []string{"t1", "t2"}, got[0].TagIDs)
	require.NotNil(t, got[0].Sale)
	require.Equal(t, "ACME", got[0].Sale.Symbol)
	require.True(t, got[0].Sale.Profit.Equal(p.Sale.Profit))
}

func TestListPostingsFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	mk := func(id string, account string, day int, status ledger.Status) ledger.Posting {
		return ledger.Posting{
			ID:          id,
			To:          &ledger.AccountRef{Type: ledger.BankAccount, ID: account},
			Amount:      ledger.M(10, "EUR"),
			Date:        ledger.NewDate(2024, time.May, day),
			Status:      status,
			Category:    ledger.CategoryIncome,
			PaymentType: ledger.OneTime,
		}
	}
	require.NoError(t, store.CreatePosting(ctx, mk("1", "a", 1, ledger.Processed)))
	require.NoError(t, store.CreatePosting(ctx, mk("2", "a", 15, ledger.Pending)))
	require.NoError(t, store.CreatePosting(ctx, mk("3", "b", 20, ledger.Processed)))

	got, err := store.ListPostings(ctx, ledger.PostingFilter{AccountID: "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = store.ListPostings(ctx, ledger.PostingFilter{
		AccountID: "a",
		Range:     ledger.NewRange(ledger.NewDate(2024, time.May, 10), ledger.NewDate(2024, time.May, 31)),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2", got[0].ID)

	got, err = store.ListPostings(ctx, ledger.PostingFilter{Statuses: []ledger.Status{ledger.Processed}})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestMutateAndDeletePosting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := ledger.Posting{
		ID:          "p1",
		To:          &ledger.AccountRef{Type: ledger.BankAccount, ID: "a"},
		Amount:      ledger.M(10, "EUR"),
		Date:        ledger.NewDate(2024, time.May, 1),
		Status:      ledger.Pending,
		Category:    ledger.CategoryExpense,
		PaymentType: ledger.OneTime,
	}
	require.NoError(t, store.CreatePosting(ctx, p))

	newStatus := ledger.Scheduled
	newAmount := ledger.M(25, "EUR")
	require.NoError(t, store.MutatePosting(ctx, "p1", ledger.PostingMutation{
		Status: &newStatus,
		Amount: &newAmount,
	}))

	got, err := store.ListPostings(ctx, ledger.PostingFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, ledger.Scheduled, got[0].Status)
	require.True(t, got[0].Amount.Equal(newAmount))

	require.NoError(t, store.DeletePosting(ctx, "p1"))
	err = store.DeletePosting(ctx, "p1")
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDefinitionAndOccurrences(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	def := ledger.RecurringDefinition{
		ID:          "d1",
		Description: "gym",
		Amount:      ledger.M(20, "USD"),
		Category:    ledger.CategorySubscription,
		Frequency:   ledger.Monthly,
		StartDate:   ledger.NewDate(2024, time.January, 1),
		Occurrences: 6,
	}
	require.NoError(t, store.SaveDefinition(ctx, def))

	got, err := store.GetDefinition(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, ledger.Monthly, got.Frequency)
	require.True(t, got.EndDate.IsZero())
	require.True(t, got.Amount.Equal(def.Amount))

	_, err = store.GetDefinition(ctx, "missing")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	for _, o := range def.Expand(nil, ledger.NewDate(2024, time.December, 31)) {
		require.NoError(t, store.CreateOccurrence(ctx, o))
	}
	occs, err := store.ListOccurrences(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, occs, 6)
	require.Equal(t, ledger.NewDate(2024, time.January, 1), occs[0].ScheduledDate)

	// truncate the series like a forward edit does
	def.EndDate = ledger.NewDate(2024, time.February, 29)
	require.NoError(t, store.SaveDefinition(ctx, def))
	got, err = store.GetDefinition(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, def.EndDate, got.EndDate)

	// deleting the definition cascades to its occurrences
	require.NoError(t, store.DeleteDefinition(ctx, "d1"))
	occs, err = store.ListOccurrences(ctx, "d1")
	require.NoError(t, err)
	require.Empty(t, occs)
}

func TestMutateOccurrence(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	def := ledger.RecurringDefinition{
		ID:        "d1",
		Amount:    ledger.M(20, "USD"),
		Category:  ledger.CategoryBill,
		Frequency: ledger.Monthly,
		StartDate: ledger.NewDate(2024, time.March, 1),
	}
	require.NoError(t, store.SaveDefinition(ctx, def))
	require.NoError(t, store.CreateOccurrence(ctx, ledger.Occurrence{
		ID:            "o1",
		DefinitionID:  "d1",
		ScheduledDate: ledger.NewDate(2024, time.March, 1),
		Amount:        ledger.M(20, "USD"),
		Status:        ledger.Scheduled,
	}))

	newDate := ledger.NewDate(2024, time.March, 5)
	newStatus := ledger.Processed
	require.NoError(t, store.MutateOccurrence(ctx, "o1", ledger.OccurrenceMutation{
		ScheduledDate: &newDate,
		Status:        &newStatus,
	}))

	occs, err := store.ListOccurrences(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, occs, 1)
	require.Equal(t, newDate, occs[0].ScheduledDate)
	require.Equal(t, ledger.Processed, occs[0].Status)

	err = store.MutateOccurrence(ctx, "missing", ledger.OccurrenceMutation{Status: &newStatus})
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestHoldingsAndSnapshots(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	h := ledger.Holding{
		ID:          "h1",
		AccountID:   "broker",
		Symbol:      "ACME",
		AssetType:   ledger.AssetStock,
		Quantity:    ledger.Q(100),
		AverageCost: ledger.M(10, "EUR"),
	}
	require.NoError(t, store.CreateHolding(ctx, h))

	got, err := store.ListHoldings(ctx, "broker")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Quantity.Equal(ledger.Q(100)))
	require.True(t, got[0].CurrentPrice.IsZero())

	h.CurrentPrice = ledger.M(12, "EUR")
	h.Quantity = ledger.Q(60)
	require.NoError(t, store.SaveHolding(ctx, h))
	got, err = store.ListHoldings(ctx, "broker")
	require.NoError(t, err)
	require.True(t, got[0].CurrentValue().Equal(ledger.M(720, "EUR")))

	snap := ledger.ValueSnapshot{AccountID: "broker", Date: ledger.NewDate(2024, time.June, 3), Value: ledger.M(720, "EUR")}
	require.NoError(t, store.AppendSnapshot(ctx, snap))
	// a same-day refresh replaces the entry
	snap.Value = ledger.M(730, "EUR")
	require.NoError(t, store.AppendSnapshot(ctx, snap))

	snaps, err := store.ListSnapshots(ctx, "broker")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.True(t, snaps[0].Value.Equal(ledger.M(730, "EUR")))

	require.NoError(t, store.DeleteHolding(ctx, "h1"))
	err = store.DeleteHolding(ctx, "h1")
	require.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestStoreImplementsContract(t *testing.T) {
	var _ ledger.Store = (*Store)(nil)
}
