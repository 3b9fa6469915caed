package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-data/atlas-pipeline/internal/generator"
)

func testBatch(t *testing.T, rows int) generator.Batch {
	t.Helper()
	gen, err := generator.New(generator.Config{
		Rows:        rows,
		Seed:        42,
		WindowStart: time.Date(2022, 1, 1, 10, 30, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
	}, nil)
	require.NoError(t, err)
	batch, err := gen.Generate(context.Background())
	require.NoError(t, err)
	return batch
}

func assembled(t *testing.T, rows int) *Table {
	t.Helper()
	table, err := Assemble(testBatch(t, rows))
	require.NoError(t, err)
	Enrich(table)
	return table
}

func TestAssemblePreservesRowCount(t *testing.T) {
	table := assembled(t, 250)
	require.Len(t, table.Rows, 250)
}

func TestAssembleRejectsDanglingUser(t *testing.T) {
	batch := testBatch(t, 20)
	batch.Sessions[3].UserID = "00000000-0000-4000-8000-000000000000"
	_, err := Assemble(batch)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}

func TestAssembleRejectsDanglingProduct(t *testing.T) {
	batch := testBatch(t, 20)
	batch.Sessions[7].ProductID = "00000000-0000-4000-8000-000000000001"
	_, err := Assemble(batch)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}

func TestEnrichDerivesTransactIDAndDeviceFields(t *testing.T) {
	table := assembled(t, 50)
	for i, r := range table.Rows {
		if !strings.HasPrefix(r.TransactID, "txn_"+r.UserID+"_") {
			t.Fatalf("row %d: unexpected transact id %s", i, r.TransactID)
		}
		require.NotEmpty(t, r.DeviceType, "row %d device type", i)
		require.NotEmpty(t, r.OS, "row %d os", i)
		require.NotEmpty(t, r.Browser, "row %d browser", i)
	}
}

func TestEnrichDerivesAnalysisFields(t *testing.T) {
	table := assembled(t, 120)

	totals := make(map[string]float64)
	for _, r := range table.Rows {
		totals[r.UserID] += r.Price
	}
	for i, r := range table.Rows {
		require.Equal(t, r.AccountCreated.Format("2006-01"), r.CohortDate, "row %d cohort", i)
		require.Equal(t, int64(r.LoginTime.Sub(r.AccountCreated)/(24*time.Hour)), r.UserAgeDays, "row %d age", i)
		require.GreaterOrEqual(t, r.UserAgeDays, int64(0), "row %d age sign", i)
		require.Contains(t, []string{"Very Low", "Low", "Medium", "High"}, r.EngagementLevel, "row %d engagement", i)
		require.Contains(t, []string{"Budget", "Standard", "Premium", "Luxury"}, r.PriceTier, "row %d tier", i)
		require.InDelta(t, totals[r.UserID], r.CustomerLifetimeValue, 0.01, "row %d lifetime value", i)
	}
}

func TestEngagementLevelBuckets(t *testing.T) {
	cases := map[float64]string{
		30:  "Very Low",
		31:  "Low",
		60:  "Low",
		90:  "Medium",
		120: "Medium",
		121: "High",
		240: "High",
	}
	for minutes, want := range cases {
		require.Equal(t, want, engagementLevel(minutes), "minutes=%v", minutes)
	}
}

func TestPriceTiersSpanQuartiles(t *testing.T) {
	tiers := newPriceTiers([]float64{10, 20, 30, 40, 50, 60, 70, 80})
	require.Equal(t, "Budget", tiers.label(10))
	require.Equal(t, "Standard", tiers.label(45))
	require.Equal(t, "Premium", tiers.label(62.5))
	require.Equal(t, "Luxury", tiers.label(80))
}

func TestPriceTiersCollapseWithoutSpread(t *testing.T) {
	tiers := newPriceTiers([]float64{9.99, 9.99, 19.99})
	require.Equal(t, "Standard", tiers.label(9.99))
	require.Equal(t, "Standard", tiers.label(19.99))
}

func TestEnrichNormalizesStatus(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[0].PurchaseStatus = "  Completed "
	Enrich(table)
	require.Equal(t, "completed", table.Rows[0].PurchaseStatus)
}

func TestValidateAcceptsGeneratedTable(t *testing.T) {
	table := assembled(t, 200)
	require.NoError(t, Validate(table))
}

func TestValidateRejectsDuplicateTransactID(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[1].TransactID = table.Rows[0].TransactID
	if err := Validate(table); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestValidateRejectsForeignKeyMiss(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[2].ProductID = "11111111-1111-4111-8111-111111111111"
	if err := Validate(table); !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}

func TestValidateRejectsNullRequiredField(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[4].Email = ""
	if err := Validate(table); !errors.Is(err, ErrNullField) {
		t.Fatalf("expected ErrNullField, got %v", err)
	}
}

func TestValidateRejectsTimestampDisorder(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[5].LogoutTime = table.Rows[5].LoginTime.Add(-time.Minute)
	if err := Validate(table); !errors.Is(err, ErrTimestampOrder) {
		t.Fatalf("expected ErrTimestampOrder, got %v", err)
	}
}

func TestValidateRejectsNonPositivePrice(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[6].Price = 0
	if err := Validate(table); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	table := assembled(t, 10)
	table.Rows[7].PurchaseStatus = "refunded"
	if err := Validate(table); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	table := assembled(t, 100)
	summary := table.Summarize()
	require.Equal(t, 100, summary.Rows)
	require.Greater(t, summary.AveragePrice, 0.0)
	require.LessOrEqual(t, summary.ActiveUsers, summary.Rows)
}
