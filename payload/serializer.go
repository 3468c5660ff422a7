package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Serializer converts a single attribute value to and from a transportable
// string. Implementations must be safe for concurrent use; the serializer is
// chosen at configuration time and never swapped afterwards.
type Serializer interface {
	Serialize(value any) (string, error)
	Deserialize(data string) (any, error)
}

// JSONSerializer is the default [Serializer]. Note the usual encoding/json
// round-trip behavior: numbers come back as float64 and structs as
// map[string]any.
type JSONSerializer struct{}

// Serialize describes the serialize operation and its observable behavior.
func (JSONSerializer) Serialize(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("json serialize: %w", err)
	}
	return string(data), nil
}

// Deserialize describes the deserialize operation and its observable behavior.
func (JSONSerializer) Deserialize(data string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, fmt.Errorf("json deserialize: %w", err)
	}
	return value, nil
}

// GobSerializer is an alternative [Serializer] for callers that need concrete
// Go types back. Types stored through it must be registered with gob.Register
// before first use.
type GobSerializer struct{}

// Serialize describes the serialize operation and its observable behavior.
func (GobSerializer) Serialize(value any) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return "", fmt.Errorf("gob serialize: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(buf.Bytes()), nil
}

// Deserialize describes the deserialize operation and its observable behavior.
func (GobSerializer) Deserialize(data string) (any, error) {
	raw, err := base64.RawStdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("gob decode base64: %w", err)
	}

	var value any
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&value); err != nil {
		return nil, fmt.Errorf("gob deserialize: %w", err)
	}
	return value, nil
}
