package simtrace

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Format selects which trace grammar Load uses to parse each line.
type Format int

const (
	// FormatStrace is the `strace -tt -e trace=open,...` record shape.
	FormatStrace Format = iota
	// FormatSeers is the "seers" record shape.
	FormatSeers
)

// Arena owns the stable storage for Calls parsed out of one trace file.
// Associations, Pages, and the call window all hold *Call references into
// an Arena; as long as the Arena (or any slice/pointer derived from it)
// is reachable, those references stay valid. In Go this is mostly
// bookkeeping rather than manual lifetime management — Add just returns
// the heap-allocated Call it was handed — but keeping it as an explicit
// type documents the ownership Design Note 9 calls out, and gives callers
// one place to range over everything a trace file produced.
type Arena struct {
	calls []*Call
}

// Add takes ownership of call and returns it back for chaining.
func (a *Arena) Add(call *Call) *Call {
	a.calls = append(a.calls, call)
	return call
}

// Calls returns every Call added so far, in insertion order.
func (a *Arena) Calls() []*Call {
	return a.calls
}

// Load reads path line by line, parsing each with the given Format, and
// returns every successfully parsed Call in file order. A malformed line
// is logged at Warn and skipped — TraceParseError never aborts the run.
func Load(path string, format Format) (*Arena, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("simtrace: opening trace %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only trace file

	arena := &Arena{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var call *Call
		var parseErr error
		switch format {
		case FormatSeers:
			call, parseErr = ParseSeers(line)
		default:
			call, parseErr = ParseStrace(line)
		}

		if parseErr != nil {
			logrus.WithFields(logrus.Fields{"trace": path, "line": lineNo}).Warnf("skipping malformed trace record: %v", parseErr)
			continue
		}
		if call == nil {
			// Signal/exit marker line; nothing to add.
			continue
		}
		arena.Add(call)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("simtrace: reading trace %q: %w", path, err)
	}

	return arena, nil
}
