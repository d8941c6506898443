package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Embedding is a stored embedding in either of the forms backends produce:
// a native vector, or its string serialization such as "[0.12,-0.5,0.33]".
type Embedding struct {
	Values []float32
	Text   string
}

// VectorEmbedding wraps a native vector.
func VectorEmbedding(v []float32) Embedding {
	return Embedding{Values: v}
}

// TextEmbedding wraps a string-serialized vector.
func TextEmbedding(s string) Embedding {
	return Embedding{Text: s}
}

// IsZero reports whether no embedding is present in either form.
func (e Embedding) IsZero() bool {
	return len(e.Values) == 0 && strings.TrimSpace(e.Text) == ""
}

// Vector decodes the embedding. It returns ErrMissingEmbedding when no
// embedding is present and ErrMalformedEmbedding when the text form cannot
// be parsed.
func (e Embedding) Vector() ([]float32, error) {
	if len(e.Values) > 0 {
		return e.Values, nil
	}
	return ParseEmbedding(e.Text)
}

// FormatEmbedding renders v in the string form accepted by ParseEmbedding.
func FormatEmbedding(v []float32) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseEmbedding decodes a string-serialized vector. Both JSON arrays and
// the bracketed list form emitted by vector databases ("[1,2,3]", with
// optional whitespace) are accepted. Blank input is ErrMissingEmbedding.
func ParseEmbedding(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, ErrMissingEmbedding
	}

	var v []float32
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		if len(v) == 0 {
			return nil, ErrMissingEmbedding
		}
		return v, nil
	}

	inner, ok := strings.CutPrefix(s, "[")
	if ok {
		inner, ok = strings.CutSuffix(inner, "]")
	}
	if !ok {
		return nil, fmt.Errorf("%w: expected bracketed list", ErrMalformedEmbedding)
	}
	fields := strings.Split(inner, ",")
	v = make([]float32, 0, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrMalformedEmbedding, i, err)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: element %d is not finite", ErrMalformedEmbedding, i)
		}
		v = append(v, float32(x))
	}
	if len(v) == 0 {
		return nil, ErrMissingEmbedding
	}
	return v, nil
}
