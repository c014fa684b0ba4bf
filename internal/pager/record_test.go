package pager

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	raw := "2024-01-01 12:00:00 X Y Z [A12] Hello World NNNN"

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if rec.Raw != raw {
		t.Errorf("Raw = %q, want %q", rec.Raw, raw)
	}
	if rec.Timestamp != "12:00:00" {
		t.Errorf("Timestamp = %q, want %q", rec.Timestamp, "12:00:00")
	}
	if rec.MonitorCode != "A12" {
		t.Errorf("MonitorCode = %q, want %q", rec.MonitorCode, "A12")
	}
	if rec.Message != "Hello World" {
		t.Errorf("Message = %q, want %q", rec.Message, "Hello World")
	}
	if rec.ID == "" {
		t.Error("ID should not be empty")
	}
}

func TestParseUniqueIDs(t *testing.T) {
	raw := "2024-01-01 12:00:00 X Y Z [A12] Hello World NNNN"
	rec1, _ := Parse(raw)
	rec2, _ := Parse(raw)
	if rec1.ID == rec2.ID {
		t.Error("two records should have different IDs")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		"",
		"one",
		"one two three",
		"a b c d e", // five tokens, monitor code out of reach
	}

	for _, raw := range tests {
		_, err := Parse(raw)
		if err == nil {
			t.Errorf("Parse(%q) should fail", raw)
			continue
		}

		var malformed *MalformedLineError
		if !errors.As(err, &malformed) {
			t.Errorf("Parse(%q) error = %T, want *MalformedLineError", raw, err)
			continue
		}
		if malformed.Raw != raw {
			t.Errorf("MalformedLineError.Raw = %q, want %q", malformed.Raw, raw)
		}
		if malformed.Tokens != len(strings.Fields(raw)) {
			t.Errorf("MalformedLineError.Tokens = %d, want %d", malformed.Tokens, len(strings.Fields(raw)))
		}
	}
}

func TestParseShortLines(t *testing.T) {
	// Six tokens: monitor code present, no message body.
	rec, err := Parse("2024-01-01 12:00:00 X Y Z [A12]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if rec.MonitorCode != "A12" {
		t.Errorf("MonitorCode = %q, want %q", rec.MonitorCode, "A12")
	}
	if rec.Message != "" {
		t.Errorf("Message = %q, want empty", rec.Message)
	}

	// Seven tokens: the single trailing token is the terminator, still no body.
	rec, err = Parse("2024-01-01 12:00:00 X Y Z [A12] NNNN")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if rec.Message != "" {
		t.Errorf("Message = %q, want empty", rec.Message)
	}
}

func TestParseOverrides(t *testing.T) {
	raw := "2024-01-01 12:00:00 X Y Z [A12] Hello World NNNN"

	rec, err := Parse(raw,
		WithTimestamp("23:59:59"),
		WithMonitorCode("B99"),
		WithMessage("overridden"),
	)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if rec.Timestamp != "23:59:59" {
		t.Errorf("Timestamp = %q, want override %q", rec.Timestamp, "23:59:59")
	}
	if rec.MonitorCode != "B99" {
		t.Errorf("MonitorCode = %q, want override %q", rec.MonitorCode, "B99")
	}
	if rec.Message != "overridden" {
		t.Errorf("Message = %q, want override %q", rec.Message, "overridden")
	}
	if rec.Raw != raw {
		t.Errorf("Raw = %q, want %q", rec.Raw, raw)
	}
}

func TestString(t *testing.T) {
	rec := Record{
		Raw:         "the raw line",
		Timestamp:   "12:00:00",
		MonitorCode: "A12",
		Message:     "Hello World",
	}

	want := "line = the raw line\n\tmessage = Hello World\n\ttimestamp = 12:00:00\n\tmonitorcode = A12"
	if got := rec.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
