package payload

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeEmptyMap(t *testing.T) {
	f := NewFormat(JSONSerializer{})

	out, err := f.Encode(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if out != "" {
		t.Fatalf("encode nil = %q, want empty", out)
	}

	out, err = f.Encode(map[string]any{})
	if err != nil {
		t.Fatalf("encode empty: %v", err)
	}
	if out != "" {
		t.Fatalf("encode empty = %q, want empty", out)
	}
}

func TestRoundTrip(t *testing.T) {
	f := NewFormat(JSONSerializer{})

	tests := []struct {
		name  string
		attrs map[string]any
	}{
		{
			name:  "simple",
			attrs: map[string]any{"user": "alice"},
		},
		{
			name: "multiple",
			attrs: map[string]any{
				"user":  "alice",
				"theme": "dark",
				"cart":  "pending",
			},
		},
		{
			name: "keys and values needing escaping",
			attrs: map[string]any{
				"a key with spaces": "value; with = reserved % chars",
				"unicode":           "héllo wörld ☺",
				"semicolons":        ";;;===",
			},
		},
		{
			name:  "empty value",
			attrs: map[string]any{"empty": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := f.Encode(tt.attrs)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			decoded, err := f.Decode(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			if !reflect.DeepEqual(decoded, tt.attrs) {
				t.Fatalf("round trip mismatch:\n got  %#v\n want %#v", decoded, tt.attrs)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	f := NewFormat(JSONSerializer{})
	attrs := map[string]any{"b": "2", "a": "1", "c": "3"}

	first, err := f.Encode(attrs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := f.Encode(attrs)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if next != first {
			t.Fatalf("encode not deterministic: %q vs %q", next, first)
		}
	}

	if !strings.HasPrefix(first, "a=") {
		t.Fatalf("keys must be sorted, got %q", first)
	}
}

func TestDecodeSkipsEmptySegments(t *testing.T) {
	f := NewFormat(JSONSerializer{})

	encoded, err := f.Encode(map[string]any{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Trailing and doubled separators decode the same.
	variants := []string{
		encoded,
		strings.TrimSuffix(encoded, ";"),
		strings.Replace(encoded, ";", ";;", 1),
	}
	for _, v := range variants {
		decoded, err := f.Decode(v)
		if err != nil {
			t.Fatalf("decode %q: %v", v, err)
		}
		if len(decoded) != 2 {
			t.Fatalf("decode %q yielded %d attrs", v, len(decoded))
		}
	}
}

func TestDecodeMalformedSegmentFailsFast(t *testing.T) {
	f := NewFormat(JSONSerializer{})

	for _, in := range []string{"noseparator", "a=%221%22;noseparator;b=%222%22"} {
		if _, err := f.Decode(in); !errors.Is(err, ErrMalformedSegment) {
			t.Fatalf("decode %q: err = %v, want ErrMalformedSegment", in, err)
		}
	}
}

func TestDecodeRejectsBadEscapes(t *testing.T) {
	f := NewFormat(JSONSerializer{})

	if _, err := f.Decode("a%ZZ=%221%22;"); err == nil {
		t.Fatal("expected error for invalid percent escape in key")
	}
	if _, err := f.Decode("a=%ZZ;"); err == nil {
		t.Fatal("expected error for invalid percent escape in value")
	}
}

func TestJSONSerializerNumbers(t *testing.T) {
	f := NewFormat(JSONSerializer{})

	decoded, err := f.Decode("n=42;")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// encoding/json round-trips numbers as float64.
	if v, ok := decoded["n"].(float64); !ok || v != 42 {
		t.Fatalf("n = %#v, want float64(42)", decoded["n"])
	}
}

func TestGobSerializerRoundTrip(t *testing.T) {
	f := NewFormat(GobSerializer{})

	attrs := map[string]any{"user": "alice", "visits": 7}
	encoded, err := f.Encode(attrs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := f.Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, attrs) {
		t.Fatalf("round trip mismatch:\n got  %#v\n want %#v", decoded, attrs)
	}
}

func TestSerializersRejectGarbage(t *testing.T) {
	if _, err := (JSONSerializer{}).Deserialize("{not json"); err == nil {
		t.Fatal("json: expected error")
	}
	if _, err := (GobSerializer{}).Deserialize("!!!"); err == nil {
		t.Fatal("gob: expected error for invalid base64")
	}
	if _, err := (GobSerializer{}).Deserialize("AAAA"); err == nil {
		t.Fatal("gob: expected error for invalid stream")
	}
}
