package chunking

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the window length in characters.
	DefaultSize = 1000
	// DefaultOverlap is the number of characters shared by consecutive windows.
	DefaultOverlap = 200
)

// Window is an untrimmed slice of the source text.
// Start and End are rune offsets, End exclusive.
type Window struct {
	Start int
	End   int
	Text  string
}

// Windows returns the raw windows covering text.
// The first window starts at 0, each subsequent one starts size-overlap
// characters later, and the last one ends at the end of text.
func Windows(text string, size, overlap int) ([]Window, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return []Window{}, nil
	}

	step := size - overlap
	windows := make([]Window, 0, n/step+1)
	for start := 0; ; start += step {
		end := min(start+size, n)
		windows = append(windows, Window{
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == n {
			break
		}
	}
	return windows, nil
}

// Chunk splits text into trimmed, non-empty windows of at most size
// characters with overlap characters shared between neighbours.
// Windows that are empty after trimming are dropped; the cursor still advances.
func Chunk(text string, size, overlap int) ([]string, error) {
	windows, err := Windows(text, size, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		if trimmed := strings.TrimSpace(w.Text); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks, nil
}

func validate(size, overlap int) error {
	if overlap < 0 || size <= overlap {
		return fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidWindow, size, overlap)
	}
	return nil
}

// Chunker splits text with a fixed window configuration.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithSize sets the window length in characters.
func WithSize(size int) Option {
	return func(c *Chunker) error {
		c.size = size
		return nil
	}
}

// WithOverlap sets the number of characters shared by consecutive windows.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) error {
		c.overlap = overlap
		return nil
	}
}

// New creates a Chunker. Defaults are DefaultSize and DefaultOverlap.
// The final configuration is validated once, so Split cannot fail.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := validate(c.size, c.overlap); err != nil {
		return nil, err
	}
	return c, nil
}

// Size returns the configured window length.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks text using the configured window.
func (c *Chunker) Split(text string) []string {
	// Configuration was validated in New.
	chunks, _ := Chunk(text, c.size, c.overlap)
	return chunks
}
