package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/models"
	tcommon "github.com/bobmcallan/fathom/tests/common"
)

// testDB starts the shared SurrealDB container and returns a connected
// *surreal.DB using a unique database name per test for isolation.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "fathom_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	for _, table := range []string{"company_facts", "analysis", "composite_score", "system_kv"} {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surreal.Query[any](ctx, db, sql, nil); err != nil {
			t.Fatalf("define table %s: %v", table, err)
		}
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func TestFactsStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewFactsStore(db, testLogger())
	ctx := context.Background()

	facts := &models.CompanyFacts{
		Symbol:     "AAPL",
		CIK:        "0000320193",
		EntityName: "Apple Inc.",
		Facts: map[string][]models.Observation{
			"Revenues": {{
				End:          time.Date(2024, time.September, 28, 0, 0, 0, 0, time.UTC),
				Unit:         "USD",
				Value:        391035000000,
				FiscalYear:   2024,
				FiscalPeriod: "FY",
				Form:         "10-K",
			}},
		},
		RetrievedAt: time.Now().UTC(),
	}

	require.NoError(t, store.SaveCompanyFacts(ctx, facts))

	got, err := store.GetCompanyFacts(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", got.EntityName)
	require.Len(t, got.Facts["Revenues"], 1)
	assert.Equal(t, 391035000000.0, got.Facts["Revenues"][0].Value)

	// Second save replaces the record.
	facts.EntityName = "Apple Inc. (restated)"
	require.NoError(t, store.SaveCompanyFacts(ctx, facts))
	got, err = store.GetCompanyFacts(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc. (restated)", got.EntityName)
}

func TestFactsStoreNotFound(t *testing.T) {
	db := testDB(t)
	store := NewFactsStore(db, testLogger())

	_, err := store.GetCompanyFacts(context.Background(), "MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAnalysisStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewAnalysisStore(db, testLogger())
	ctx := context.Background()

	analysis := &models.StockAnalysis{
		Symbol: "MSFT",
		HealthScore: &models.HealthScore{
			Overall: 82.5,
			Grade:   "B+",
		},
		GeneratedAt: time.Now().UTC(),
	}

	require.NoError(t, store.SaveAnalysis(ctx, analysis))

	got, err := store.GetAnalysis(ctx, "MSFT")
	require.NoError(t, err)
	require.NotNil(t, got.HealthScore)
	assert.Equal(t, "B+", got.HealthScore.Grade)

	symbols, err := store.ListAnalyzedSymbols(ctx)
	require.NoError(t, err)
	assert.Contains(t, symbols, "MSFT")
}

func TestCompositeScoreRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewAnalysisStore(db, testLogger())
	ctx := context.Background()

	score := &models.CompositeScore{
		Symbol:          "MSFT",
		BusinessQuality: 43,
		Timing:          18.5,
		Overall:         61.5,
		Recommendation:  models.RecHold,
		GeneratedAt:     time.Now().UTC(),
	}

	require.NoError(t, store.SaveCompositeScore(ctx, score))

	got, err := store.GetCompositeScore(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, models.RecHold, got.Recommendation)
	assert.InDelta(t, 61.5, got.Overall, 0.0001)
}

func TestKVStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewKVStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "refresh_cursor", "MSFT"))

	val, err := store.Get(ctx, "refresh_cursor")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", val)

	require.NoError(t, store.Delete(ctx, "refresh_cursor"))
	_, err = store.Get(ctx, "refresh_cursor")
	assert.Error(t, err)
}
