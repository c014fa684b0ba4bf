// Package pager defines the record model for decoded FLEX pager lines.
package pager

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// minTokens is the smallest whitespace-delimited token count a decoded
// FLEX line can have and still carry a monitor code at index 5.
const minTokens = 6

// MalformedLineError reports a line with too few tokens to parse.
type MalformedLineError struct {
	Raw    string
	Tokens int
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed pager line: %d token(s), need at least %d", e.Tokens, minTokens)
}

// Record is one decoded pager message. Records are constructed per line,
// never mutated after Parse returns, and not retained by the read loop.
type Record struct {
	ID          string
	Raw         string
	Timestamp   string
	MonitorCode string
	Message     string
}

// Option overrides a field that Parse would otherwise extract.
type Option func(*Record)

// WithTimestamp overrides the extracted timestamp.
func WithTimestamp(ts string) Option {
	return func(r *Record) { r.Timestamp = ts }
}

// WithMonitorCode overrides the extracted monitor code.
func WithMonitorCode(code string) Option {
	return func(r *Record) { r.MonitorCode = code }
}

// WithMessage overrides the extracted message.
func WithMessage(msg string) Option {
	return func(r *Record) { r.Message = msg }
}

// Parse splits raw on whitespace and extracts the record fields: token 1 is
// the timestamp, token 5 (stripped of enclosing brackets) is the monitor
// code, and tokens 6 through the second-to-last form the message. The final
// token is the FLEX terminator word and is not part of the message. Lines
// with fewer than 6 tokens return a *MalformedLineError.
func Parse(raw string, opts ...Option) (Record, error) {
	words := strings.Fields(raw)
	if len(words) < minTokens {
		return Record{}, &MalformedLineError{Raw: raw, Tokens: len(words)}
	}

	rec := Record{
		ID:          uuid.NewString(),
		Raw:         raw,
		Timestamp:   words[1],
		MonitorCode: strings.Trim(words[5], "[]"),
	}
	if len(words) > minTokens {
		rec.Message = strings.Join(words[6:len(words)-1], " ")
	}

	for _, opt := range opts {
		opt(&rec)
	}
	return rec, nil
}

// String renders the record for diagnostics. This is not a wire format.
func (r Record) String() string {
	return fmt.Sprintf("line = %s\n\tmessage = %s\n\ttimestamp = %s\n\tmonitorcode = %s",
		r.Raw, r.Message, r.Timestamp, r.MonitorCode)
}
