package simtrace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse marks a malformed trace record. The loader treats it as
// non-fatal: log and skip the line, keep replaying.
var ErrParse = errors.New("simtrace: malformed trace record")

// ErrArgument marks a bad or missing CLI argument, surfaced by cmd.
var ErrArgument = errors.New("simtrace: invalid argument")

// isDelim matches the delimiter set both accepted trace formats use to
// tokenize a line: '=', ':', ',', '(', ')', '"', and the space character
// (runs collapse; tabs and other whitespace are not delimiters).
func isDelim(r rune) bool {
	switch r {
	case '=', ':', ',', '(', ')', '"', ' ':
		return true
	default:
		return false
	}
}

func tokenize(line string) []string {
	return strings.FieldsFunc(line, isDelim)
}

func parseErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)
}

func normalizeBytes(b int64) int64 {
	if b <= 0 {
		return DefaultBytes
	}
	return b
}

func splitSecondsMicros(field string) (seconds int, micros int, err error) {
	dot := strings.IndexByte(field, '.')
	if dot < 0 {
		seconds, err = strconv.Atoi(field)
		return seconds, 0, err
	}
	seconds, err = strconv.Atoi(field[:dot])
	if err != nil {
		return 0, 0, err
	}
	frac := field[dot+1:]
	// Right-pad to 6 digits so "1200.5" means 500000us, not 5us.
	for len(frac) < 6 {
		frac += "0"
	}
	if len(frac) > 6 {
		frac = frac[:6]
	}
	micros, err = strconv.Atoi(frac)
	return seconds, micros, err
}

// ParseStrace parses a single line of `strace -tt` output. Fields are
// tokenized on '=', ':', ',', '(', ')', '"', and space: field 0 is the
// hour, field 1 the minute, field 2 "second.microsecond", field 3 the call
// kind, field 4 the path (open) or stream id (read/write/close), and the
// last field the stream id (open) or byte count (read/write).
//
// Lines whose kind is "+++" or "---" (strace's signal/exit markers) are
// skipped: ParseStrace returns (nil, nil) for those, which the loader
// treats as "nothing to add", not a parse failure.
func ParseStrace(line string) (*Call, error) {
	tokens := tokenize(line)
	if len(tokens) < 5 {
		return nil, parseErr("strace line has %d fields, need at least 5: %q", len(tokens), line)
	}

	kind := Kind(tokens[3])
	if kind == "+++" || kind == "---" {
		return nil, nil
	}

	hour, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, parseErr("hour field %q: %v", tokens[0], err)
	}
	minute, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, parseErr("minute field %q: %v", tokens[1], err)
	}
	second, micros, err := splitSecondsMicros(tokens[2])
	if err != nil {
		return nil, parseErr("second field %q: %v", tokens[2], err)
	}

	call := &Call{
		Kind: kind,
		WallTime: WallTime{
			Hour:        hour,
			Minute:      minute,
			Second:      second,
			Microsecond: micros,
		},
	}

	last := tokens[len(tokens)-1]
	switch kind {
	case KindOpen:
		call.Path = tokens[4]
		streamID, err := strconv.Atoi(last)
		if err != nil {
			return nil, parseErr("open stream id %q: %v", last, err)
		}
		call.StreamID = streamID
		call.Bytes = ProbeFileSize(call.Path) // strace open records carry no size
	case KindRead, KindWrite:
		call.Path = "n/a"
		streamID, err := strconv.Atoi(tokens[4])
		if err != nil {
			return nil, parseErr("%s stream id %q: %v", kind, tokens[4], err)
		}
		call.StreamID = streamID
		bytes, err := strconv.ParseInt(last, 10, 64)
		if err != nil {
			return nil, parseErr("%s byte count %q: %v", kind, last, err)
		}
		call.Bytes = normalizeBytes(bytes)
	case KindClose:
		call.Path = "n/a"
		streamID, err := strconv.Atoi(tokens[4])
		if err != nil {
			return nil, parseErr("close stream id %q: %v", tokens[4], err)
		}
		call.StreamID = streamID
		call.Bytes = 0
	default:
		// An unrecognized call kind in a noisy trace: keep it as an inert
		// record rather than failing the whole line.
		call.Path = "n/a"
		call.Bytes = DefaultBytes
	}

	return call, nil
}

// ParseSeers parses a single "seers" trace record. Fields use the same
// delimiter set as ParseStrace. 0-based field offsets: 6 is the timestamp
// ("epoch_seconds.microseconds"), 7 the call kind, 8 the path, 10 the byte
// count. (These correspond to the spec's 1-based field numbers 7/8/9/11.)
// seers records carry no stream id field; it defaults to 0.
func ParseSeers(line string) (*Call, error) {
	tokens := tokenize(line)
	if len(tokens) < 11 {
		return nil, parseErr("seers line has %d fields, need at least 11: %q", len(tokens), line)
	}

	kind := Kind(tokens[7])
	if kind == "+++" || kind == "---" {
		return nil, nil
	}

	epochSeconds, micros, err := splitSecondsMicros(tokens[6])
	if err != nil {
		return nil, parseErr("timestamp field %q: %v", tokens[6], err)
	}

	bytes, err := strconv.ParseInt(tokens[10], 10, 64)
	if err != nil {
		return nil, parseErr("byte count %q: %v", tokens[10], err)
	}

	return &Call{
		Kind: kind,
		Path: tokens[8],
		WallTime: WallTime{
			Hour:        (epochSeconds / 3600) % 24,
			Minute:      (epochSeconds / 60) % 60,
			Second:      epochSeconds % 60,
			Microsecond: micros,
		},
		Bytes:    normalizeBytes(bytes),
		StreamID: 0,
	}, nil
}
