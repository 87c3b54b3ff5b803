package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Shape is how a completion reply was interpreted.
type Shape int

const (
	// ShapeText is a reply that is not valid JSON; Text holds it trimmed.
	ShapeText Shape = iota
	// ShapeObject is a JSON object.
	ShapeObject
	// ShapeArray is a JSON array.
	ShapeArray
	// ShapeScalar is any other JSON value (string, number, bool, null).
	ShapeScalar
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	case ShapeScalar:
		return "scalar"
	default:
		return "text"
	}
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
	Cached       bool
	// CacheKey is the request fingerprint, empty when no cache is configured.
	CacheKey string
}

// Reply is a completion decoded once into an explicit shape. Text always holds
// the trimmed model output so callers can run their own parsing on it.
type Reply struct {
	Shape    Shape
	Text     string
	Raw      json.RawMessage
	Metadata GenerateMetadata
}

// NewReply classifies the model output.
func NewReply(content string) *Reply {
	text := strings.TrimSpace(content)
	reply := &Reply{Shape: ShapeText, Text: text}
	if text == "" || !json.Valid([]byte(text)) {
		return reply
	}

	reply.Raw = json.RawMessage(text)
	switch text[0] {
	case '{':
		reply.Shape = ShapeObject
	case '[':
		reply.Shape = ShapeArray
	default:
		reply.Shape = ShapeScalar
	}
	return reply
}

// Decode unmarshals a JSON reply into dest.
func (r *Reply) Decode(dest any) error {
	if r.Shape == ShapeText {
		return fmt.Errorf("reply is not JSON")
	}
	return json.Unmarshal(r.Raw, dest)
}

// Strings returns the string elements of an array reply. Non-string elements are skipped.
func (r *Reply) Strings() ([]string, bool) {
	if r.Shape != ShapeArray {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal(r.Raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Message returns the reply as prose: the decoded value for a JSON string, else Text.
func (r *Reply) Message() string {
	if r.Shape == ShapeScalar {
		var s string
		if err := json.Unmarshal(r.Raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return r.Text
}
