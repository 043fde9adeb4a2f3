package persistence

import (
	"testing"

	"github.com/fairsim/fairsim/internal/metrics"
)

func TestResultStore_SaveAndLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	collector := metrics.NewMemoryCollector()
	for _, lat := range []float64{1, 2, 3, 4, 5} {
		collector.RecordLatency("solo", 0, lat, lat)
	}

	if err := db.SaveResults("run-a", collector); err != nil {
		t.Fatalf("SaveResults() error: %v", err)
	}

	rows, err := db.LoadResults("run-a")
	if err != nil {
		t.Fatalf("LoadResults() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].RequestType != "solo" {
		t.Errorf("RequestType = %q, want solo", rows[0].RequestType)
	}
	if rows[0].SampleCount != 5 {
		t.Errorf("SampleCount = %d, want 5", rows[0].SampleCount)
	}
}

func TestResultStore_SaveIsAppendOnly(t *testing.T) {
	db := newTestDB(t)
	collector := metrics.NewMemoryCollector()
	collector.RecordLatency("solo", 0, 1, 1)

	if err := db.SaveResults("run-a", collector); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveResults("run-a", collector); err != nil {
		t.Fatal(err)
	}

	rows, err := db.LoadResults("run-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (append-only, not upsert)", len(rows))
	}
}

func TestResultStore_LoadUnknownRunReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	rows, err := db.LoadResults("nope")
	if err != nil {
		t.Fatalf("LoadResults() error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
