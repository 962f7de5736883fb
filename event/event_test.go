package event

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samsaffron/streamblocks/streamerr"
)

// TestBaseFieldsSerialize guards against the id/timestamp fields silently
// vanishing from JSON output: encoding/json never marshals unexported
// struct fields, even when they're reachable through exported accessor
// methods on an embedded struct.
func TestBaseFieldsSerialize(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	ev := NewTextContent(now, "hello", 1)

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if _, ok := decoded["id"]; !ok {
		t.Fatalf("marshaled event missing \"id\" field: %s", data)
	}
	if got, ok := decoded["timestamp_ms"].(float64); !ok || int64(got) != now.UnixMilli() {
		t.Fatalf("marshaled event timestamp_ms = %v, want %d", decoded["timestamp_ms"], now.UnixMilli())
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	now := time.Now()
	a := NewStreamStarted(now)
	b := NewStreamStarted(now)
	if a.ID() == b.ID() {
		t.Fatalf("two distinct events share id %q", a.ID())
	}
}

func TestTimestampMSReflectsConstructionTime(t *testing.T) {
	now := time.UnixMilli(42)
	ev := NewStreamStarted(now)
	if got := ev.TimestampMS(); got != 42 {
		t.Fatalf("TimestampMS() = %d, want 42", got)
	}
}

func TestBlockErrorErrExcludedFromJSONButCodePreserved(t *testing.T) {
	now := time.Now()
	underlying := streamerr.New(streamerr.CodeSyntaxError, "bad yaml", errors.New("yaml: unclosed flow sequence"))
	ev := NewBlockError(now, "b_000001", 1, 5, underlying)

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if strings.Contains(string(data), "unclosed flow sequence") {
		t.Fatalf("marshaled event leaks the underlying error: %s", data)
	}

	var decoded struct {
		Err struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Err"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if decoded.Err.Code != string(streamerr.CodeSyntaxError) {
		t.Fatalf("decoded Err.Code = %q, want %q", decoded.Err.Code, streamerr.CodeSyntaxError)
	}
}

func TestEventKindsAreDistinct(t *testing.T) {
	now := time.Now()
	events := []Event{
		NewStreamStarted(now),
		NewStreamFinished(now),
		NewTextContent(now, "x", 1),
		NewBlockStart(now, "b_000001", "delimiter_preamble", 1, nil),
	}
	seen := map[Kind]bool{}
	for _, e := range events {
		if seen[e.Kind()] {
			t.Fatalf("duplicate kind %v among distinct event types", e.Kind())
		}
		seen[e.Kind()] = true
	}
}
