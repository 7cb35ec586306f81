package arrowmetrics

import (
	"testing"

	"github.com/arrowtable/arrowtable/arrowtable"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func identityHash(k int) uint64 { return uint64(k) }
func intEqual(a, b int) bool    { return a == b }

func counterValue(t *testing.T, cv *prometheus.CounterVec, label string) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := cv.WithLabelValues(label).Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestInstrumentedCountsInsertResults(t *testing.T) {
	tbl, err := arrowtable.New[int, int](2, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	inst := NewInstrumented[int, int](tbl, reg)

	if _, had, err := inst.Insert(1, 10); err != nil || had {
		t.Fatalf("Insert(1,10) = had %v, err %v", had, err)
	}
	if _, had, err := inst.Insert(2, 20); err != nil || had {
		t.Fatalf("Insert(2,20) = had %v, err %v", had, err)
	}
	if _, _, err := inst.Insert(3, 30); err == nil {
		t.Fatal("Insert(3,30) on full table: want error, got nil")
	}

	if got := counterValue(t, inst.inserts, resultOK); got != 2 {
		t.Fatalf("ok inserts = %v, want 2", got)
	}
	if got := counterValue(t, inst.inserts, resultFull); got != 1 {
		t.Fatalf("full inserts = %v, want 1", got)
	}
}

func TestInstrumentedCountsSearchAndDelete(t *testing.T) {
	tbl, err := arrowtable.New[int, int](4, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	inst := NewInstrumented[int, int](tbl, reg)

	if _, _, err := inst.Insert(1, 10); err != nil {
		t.Fatal(err)
	}
	if _, ok := inst.Search(1); !ok {
		t.Fatal("Search(1): want found")
	}
	if _, ok := inst.Search(2); ok {
		t.Fatal("Search(2): want absent")
	}
	if _, ok := inst.Delete(1); !ok {
		t.Fatal("Delete(1): want found")
	}
	if _, ok := inst.Delete(1); ok {
		t.Fatal("Delete(1) again: want absent")
	}

	if got := counterValue(t, inst.searches, resultOK); got != 1 {
		t.Fatalf("ok searches = %v, want 1", got)
	}
	if got := counterValue(t, inst.searches, resultAbsent); got != 1 {
		t.Fatalf("absent searches = %v, want 1", got)
	}
	if got := counterValue(t, inst.deletes, resultOK); got != 1 {
		t.Fatalf("ok deletes = %v, want 1", got)
	}
	if got := counterValue(t, inst.deletes, resultAbsent); got != 1 {
		t.Fatalf("absent deletes = %v, want 1", got)
	}
}

func TestInstrumentedLenAndCap(t *testing.T) {
	tbl, err := arrowtable.New[int, int](8, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	inst := NewInstrumented[int, int](tbl, reg)
	if inst.Cap() != 8 {
		t.Fatalf("Cap() = %d, want 8", inst.Cap())
	}
	if _, _, err := inst.Insert(1, 1); err != nil {
		t.Fatal(err)
	}
	if inst.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", inst.Len())
	}
}
