package arrowtrace

import (
	"strings"
	"testing"

	"github.com/arrowtable/arrowtable/arrowtable"
)

func identityHash(k int) uint64 { return uint64(k) }
func intEqual(a, b int) bool    { return a == b }

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want Record
	}{
		{"PUT 1 2", Record{Op: OpPut, Key: 1, Value: 2}},
		{"GET 1 2", Record{Op: OpGet, Key: 1, Expected: 2}},
		{"DEL 1 -1", Record{Op: OpDel, Key: 1, Expected: -1}},
	}
	for _, c := range cases {
		got, err := ParseLine(c.line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", c.line, err)
		}
		got.Line = 0
		if got != c.want {
			t.Fatalf("ParseLine(%q) = %+v, want %+v", c.line, got, c.want)
		}
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	for _, line := range []string{"PUT 1", "XYZ 1 2", "PUT a 2", "PUT 1 b"} {
		if _, err := ParseLine(line); err == nil {
			t.Fatalf("ParseLine(%q): want error, got nil", line)
		}
	}
}

func TestReplayCleanTrace(t *testing.T) {
	tbl, err := arrowtable.New[int, int](10, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	trace := "PUT 1 100\nPUT 2 200\nGET 1 100\nGET 3 -1\nDEL 1 100\nGET 1 -1\nDEL 1 -1\n"
	records, err := ParseAll(strings.NewReader(trace))
	if err != nil {
		t.Fatal(err)
	}
	report, err := Replay(tbl, records)
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Fatalf("report not OK: %+v", report.Mismatch)
	}
	if report.RecordsPlayed != len(records) {
		t.Fatalf("RecordsPlayed = %d, want %d", report.RecordsPlayed, len(records))
	}
}

func TestReplayDetectsBadExpectation(t *testing.T) {
	tbl, err := arrowtable.New[int, int](10, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	records, err := ParseAll(strings.NewReader("PUT 1 100\nGET 1 999\n"))
	if err != nil {
		t.Fatal(err)
	}
	report, err := Replay(tbl, records)
	if err != nil {
		t.Fatal(err)
	}
	if report.OK() {
		t.Fatal("expected a mismatch, got none")
	}
	if report.Mismatch.Record.Op != OpGet {
		t.Fatalf("mismatch op = %v, want GET", report.Mismatch.Record.Op)
	}
}
