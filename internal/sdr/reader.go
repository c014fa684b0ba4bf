package sdr

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/MalumAtire832/p2000/internal/config"
	"github.com/MalumAtire832/p2000/internal/filter"
	"github.com/MalumAtire832/p2000/internal/pager"
)

// ErrAlreadyActive is returned by Attach while a live connection is attached.
var ErrAlreadyActive = errors.New("connection is already active")

// Handler receives each raw line read from an attached connection. The line
// slice is only valid for the duration of the call; copy it to retain it.
// A non-nil error aborts the read loop, the reader detaches, and the error
// propagates to the Attach caller.
type Handler interface {
	Act(line []byte) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(line []byte) error

func (f HandlerFunc) Act(line []byte) error { return f(line) }

// Reader consumes lines from a Conn and hands them to a Handler. Blacklist
// sets and the line encoding are loaded once at construction. A Reader owns
// at most one connection at a time and is not safe for concurrent use; run
// one Reader per goroutine.
type Reader struct {
	handler  Handler
	messages filter.Set
	codes    filter.Set
	enc      encoding.Encoding
	conn     Conn
}

// NewReader builds a Reader from the loaded configuration and the
// integrator's handler. The configured encoding name is resolved against
// the IANA charset registry; the default is UTF-8.
func NewReader(cfg *config.Config, handler Handler) (*Reader, error) {
	if handler == nil {
		return nil, errors.New("handler must not be nil")
	}

	name := cfg.RTLSDR.Encoding
	if name == "" {
		name = "utf-8"
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q has no decoder", name)
	}

	return &Reader{
		handler:  handler,
		messages: filter.NewSet(cfg.RTLSDR.Blacklist.Messages),
		codes:    filter.NewSet(cfg.RTLSDR.Blacklist.MonitorCodes),
		enc:      enc,
	}, nil
}

// Attach opens conn and runs the read loop on the calling goroutine: one
// Act call per line until the stream ends, the scan fails, or the handler
// returns an error. Whatever the exit reason, the connection is detached
// before Attach returns, then the error (if any) propagates.
//
// Attaching while a live connection is present fails with ErrAlreadyActive
// and changes nothing. A previously attached connection whose stream is
// already gone counts as reusable-idle and does not block a new attach.
func (r *Reader) Attach(ctx context.Context, conn Conn) error {
	if r.conn != nil && r.conn.Stream() != nil {
		return ErrAlreadyActive
	}
	return r.setup(ctx, conn)
}

func (r *Reader) setup(ctx context.Context, conn Conn) error {
	r.conn = conn
	defer r.Detach()

	if err := conn.Open(ctx, false); err != nil {
		return fmt.Errorf("opening connection: %w", err)
	}

	scanner := bufio.NewScanner(conn.Stream())
	scanner.Buffer(make([]byte, 0, 4*1024), 256*1024)

	for scanner.Scan() {
		if err := r.handler.Act(scanner.Bytes()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Detach kills the attached connection and clears the reference. Calling it
// with no connection attached is a no-op.
func (r *Reader) Detach() {
	if r.conn != nil {
		r.conn.Kill()
		r.conn = nil
	}
}

// DecodeLine converts raw bytes to text using the reader's configured
// encoding. strip removes trailing whitespace, including the newline.
func (r *Reader) DecodeLine(raw []byte, strip bool) (string, error) {
	decoded, err := r.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding line: %w", err)
	}
	s := string(decoded)
	if strip {
		s = strings.TrimRightFunc(s, unicode.IsSpace)
	}
	return s, nil
}

// NewRecord turns a raw line into a pager.Record. Set decode to false when
// the line is already text in the right encoding; strip is applied only
// when decoding.
func (r *Reader) NewRecord(raw []byte, decode, strip bool) (pager.Record, error) {
	line := string(raw)
	if decode {
		var err error
		line, err = r.DecodeLine(raw, strip)
		if err != nil {
			return pager.Record{}, err
		}
	}
	return pager.Parse(line)
}

// IsRecordBlacklisted reports whether rec matches either configured
// blacklist.
func (r *Reader) IsRecordBlacklisted(rec pager.Record) bool {
	return filter.IsBlacklisted(rec, r.messages, r.codes)
}

// IsMonitorCodeBlacklisted reports whether rec's monitor code is
// blacklisted.
func (r *Reader) IsMonitorCodeBlacklisted(rec pager.Record) bool {
	return r.codes.Contains(rec.MonitorCode)
}

// IsMessageBlacklisted reports whether rec's message is blacklisted.
func (r *Reader) IsMessageBlacklisted(rec pager.Record) bool {
	return r.messages.Contains(rec.Message)
}

// IsRawBlacklisted decodes and parses raw, then checks both blacklists.
// Prefer IsRecordBlacklisted with an already-parsed record over parsing the
// same line twice.
func (r *Reader) IsRawBlacklisted(raw []byte) (bool, error) {
	rec, err := r.NewRecord(raw, true, true)
	if err != nil {
		return false, err
	}
	return r.IsRecordBlacklisted(rec), nil
}

// IsRawMonitorCodeBlacklisted decodes and parses raw, then checks the
// monitor code blacklist.
func (r *Reader) IsRawMonitorCodeBlacklisted(raw []byte) (bool, error) {
	rec, err := r.NewRecord(raw, true, true)
	if err != nil {
		return false, err
	}
	return r.IsMonitorCodeBlacklisted(rec), nil
}

// IsRawMessageBlacklisted decodes and parses raw, then checks the message
// blacklist.
func (r *Reader) IsRawMessageBlacklisted(raw []byte) (bool, error) {
	rec, err := r.NewRecord(raw, true, true)
	if err != nil {
		return false, err
	}
	return r.IsMessageBlacklisted(rec), nil
}
