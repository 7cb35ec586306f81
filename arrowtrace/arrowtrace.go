// Package arrowtrace implements the external test-driver collaborator
// for arrowtable: a line-oriented trace format of PUT/GET/DEL records,
// replayed against an arrowtable.Table while a reference map asserts
// equivalence after every record.
//
//	PUT <key:int> <value:int>
//	GET <key:int> <expected:int>    // -1 if key absent
//	DEL <key:int> <incumbent:int>   // -1 if key absent
package arrowtrace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arrowtable/arrowtable/arrowtable"
	"github.com/kylelemons/godebug/pretty"
)

// Op identifies the kind of a trace Record.
type Op byte

// The three trace operations.
const (
	OpPut Op = 'P'
	OpGet Op = 'G'
	OpDel Op = 'D'
)

func (o Op) String() string {
	switch o {
	case OpPut:
		return "PUT"
	case OpGet:
		return "GET"
	case OpDel:
		return "DEL"
	default:
		return fmt.Sprintf("Op(%q)", byte(o))
	}
}

// Record is one parsed line of a trace.
type Record struct {
	Op Op
	// Key is always present. Value holds PUT's value. Expected holds
	// GET's expected value or DEL's expected incumbent value; -1 means
	// the key is expected to be absent.
	Key, Value, Expected int
	Line                 int // 1-based source line, for error reporting
}

// ParseLine parses a single trace line. Blank lines and lines starting
// with '#' are skipped by ParseAll's scanning loop, not by ParseLine
// itself, which always expects a record and returns an error for them.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Record{}, fmt.Errorf("arrowtrace: want 3 fields, got %d: %q", len(fields), line)
	}
	key, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("arrowtrace: bad key in %q: %w", line, err)
	}
	val, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("arrowtrace: bad value in %q: %w", line, err)
	}
	switch fields[0] {
	case "PUT":
		return Record{Op: OpPut, Key: key, Value: val}, nil
	case "GET":
		return Record{Op: OpGet, Key: key, Expected: val}, nil
	case "DEL":
		return Record{Op: OpDel, Key: key, Expected: val}, nil
	default:
		return Record{}, fmt.Errorf("arrowtrace: unknown op %q in %q", fields[0], line)
	}
}

// ParseAll reads a full trace from r, skipping blank lines and lines
// starting with '#'.
func ParseAll(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("arrowtrace: line %d: %w", lineNo, err)
		}
		rec.Line = lineNo
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Mismatch describes the first record whose outcome against the table
// disagreed with the trace's expectation or the reference oracle.
type Mismatch struct {
	Record   Record
	Got      int
	Diff     string // human-readable diff of table state vs. oracle, via godebug/pretty
}

// Report is the result of replaying a trace.
type Report struct {
	RecordsPlayed int
	Mismatch      *Mismatch // nil if every record matched
}

// OK reports whether the whole trace replayed without any mismatch.
func (r *Report) OK() bool {
	return r.Mismatch == nil
}

// Replay runs records against t, maintaining an internal reference map
// oracle, and stops at the first disagreement between the trace's
// declared expectation, the table, and the oracle.
func Replay(t *arrowtable.Table[int, int], records []Record) (*Report, error) {
	oracle := map[int]int{}
	report := &Report{}

	for _, rec := range records {
		switch rec.Op {
		case OpPut:
			if _, _, err := t.Insert(rec.Key, rec.Value); err != nil {
				return report, fmt.Errorf("arrowtrace: line %d: PUT %d %d: %w", rec.Line, rec.Key, rec.Value, err)
			}
			oracle[rec.Key] = rec.Value
		case OpGet:
			want := -1
			if v, ok := oracle[rec.Key]; ok {
				want = v
			}
			if want != rec.Expected {
				return finish(report, rec, want, t, oracle, "GET expectation in trace disagrees with oracle")
			}
			got, ok := t.Search(rec.Key)
			gotVal := -1
			if ok {
				gotVal = got
			}
			if gotVal != want {
				return finish(report, rec, gotVal, t, oracle, "table disagrees with oracle on GET")
			}
		case OpDel:
			want := -1
			if v, ok := oracle[rec.Key]; ok {
				want = v
			}
			if want != rec.Expected {
				return finish(report, rec, want, t, oracle, "DEL expectation in trace disagrees with oracle")
			}
			got, ok := t.Delete(rec.Key)
			gotVal := -1
			if ok {
				gotVal = got
			}
			delete(oracle, rec.Key)
			if gotVal != want {
				return finish(report, rec, gotVal, t, oracle, "table disagrees with oracle on DEL")
			}
		default:
			return report, fmt.Errorf("arrowtrace: unhandled op %v at line %d", rec.Op, rec.Line)
		}
		report.RecordsPlayed++
	}
	return report, nil
}

func finish(report *Report, rec Record, got int, t *arrowtable.Table[int, int], oracle map[int]int, why string) (*Report, error) {
	snapshot := map[int]int{}
	for k := range oracle {
		if v, ok := t.Search(k); ok {
			snapshot[k] = v
		}
	}
	report.Mismatch = &Mismatch{
		Record: rec,
		Got:    got,
		Diff:   why + "\n" + pretty.Compare(oracle, snapshot),
	}
	return report, nil
}
