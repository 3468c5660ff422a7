package payload

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrMalformedSegment is returned by Decode for a non-empty segment that lacks
// a '=' separator.
var ErrMalformedSegment = errors.New("malformed payload segment")

// Format encodes an attribute map as "k1=v1;k2=v2;" with percent-encoded halves.
// Keys are sorted on encode so output is deterministic; decode is
// order-insensitive.
type Format struct {
	ser Serializer
}

// NewFormat creates a [Format] over the given value serializer.
func NewFormat(ser Serializer) *Format {
	return &Format{ser: ser}
}

// Encode describes the encode operation and its observable behavior.
//
// Encode may return an error when a value rejects serialization. An empty map
// yields an empty string.
func (f *Format) Encode(attrs map[string]any) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		serialized, err := f.ser.Serialize(attrs[k])
		if err != nil {
			return "", fmt.Errorf("attribute %q: %w", k, err)
		}

		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(serialized))
		b.WriteByte(';')
	}

	return b.String(), nil
}

// Decode describes the decode operation and its observable behavior.
//
// Decode fails fast on a malformed segment instead of dropping it: silent loss
// would corrupt session state. Empty segments are skipped, so both "a=1;" and
// "a=1" decode.
func (f *Format) Decode(encoded string) (map[string]any, error) {
	attrs := make(map[string]any)

	for i, segment := range strings.Split(encoded, ";") {
		if segment == "" {
			continue
		}

		eq := strings.IndexByte(segment, '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: segment %d has no separator", ErrMalformedSegment, i)
		}

		key, err := url.QueryUnescape(segment[:eq])
		if err != nil {
			return nil, fmt.Errorf("segment %d key: %w", i, err)
		}

		rawValue, err := url.QueryUnescape(segment[eq+1:])
		if err != nil {
			return nil, fmt.Errorf("segment %d value: %w", i, err)
		}

		value, err := f.ser.Deserialize(rawValue)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}

		attrs[key] = value
	}

	return attrs, nil
}
