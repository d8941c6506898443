package tagging

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
)

const (
	// DefaultTopN is the number of tags kept per chunk.
	DefaultTopN = 6
	// DefaultMaxInputChars is the largest input the ranker will process.
	DefaultMaxInputChars = 1_000_000
	// DefaultMinTagLength is the shortest accepted phrase, in characters.
	DefaultMinTagLength = 2
)

// TieBreak selects how candidates with equal frequency are ordered.
type TieBreak int

const (
	// TieBreakLonger orders equal-frequency candidates by descending length,
	// then by first appearance.
	TieBreakLonger TieBreak = iota
	// TieBreakFirstSeen orders equal-frequency candidates by first appearance only.
	TieBreakFirstSeen
)

// Ranker ranks candidate phrases into display tags. The zero value is not
// usable; construct with NewRanker. A Ranker is immutable and safe for
// concurrent use.
type Ranker struct {
	topN          int
	maxInputChars int
	minTagLength  int
	tieBreak      TieBreak
	logger        *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithTopN sets the maximum number of tags returned.
func WithTopN(n int) Option {
	return func(r *Ranker) {
		r.topN = n
	}
}

// WithMaxInputChars sets the input ceiling. Inputs above it yield no tags.
// Zero or negative disables the ceiling.
func WithMaxInputChars(n int) Option {
	return func(r *Ranker) {
		r.maxInputChars = n
	}
}

// WithMinTagLength sets the shortest accepted phrase length. Zero keeps
// every non-blank phrase.
func WithMinTagLength(n int) Option {
	return func(r *Ranker) {
		r.minTagLength = n
	}
}

// WithTieBreak sets the ordering for equal-frequency candidates.
func WithTieBreak(tb TieBreak) Option {
	return func(r *Ranker) {
		r.tieBreak = tb
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRanker creates a Ranker with the default limits and applies opts. The
// default drops phrases shorter than DefaultMinTagLength.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		topN:          DefaultTopN,
		maxInputChars: DefaultMaxInputChars,
		minTagLength:  DefaultMinTagLength,
		tieBreak:      TieBreakLonger,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "tag-ranker")
	return r
}

// TopN returns the configured tag limit.
func (r *Ranker) TopN() int { return r.topN }

// RankTags ranks candidates with the default limits, keeping at most topN
// tags. Candidates are taken as already length-filtered: only blank keys are
// dropped, so one-character tags survive.
func RankTags(candidates []string, topN int) []string {
	return NewRanker(WithTopN(topN), WithMinTagLength(0)).Rank(candidates)
}

type candidate struct {
	key       string
	count     int
	length    int
	firstSeen int
}

// Rank returns at most TopN tags from candidates. It never fails: empty,
// oversized or unusable input yields an empty list.
func (r *Ranker) Rank(candidates []string) []string {
	tags := []string{}
	if len(candidates) == 0 || r.topN <= 0 {
		return tags
	}
	if r.exceedsCeiling(candidates) {
		r.logger.Debug("candidate input above ceiling, skipping", "candidates", len(candidates), "max_chars", r.maxInputChars)
		return tags
	}

	byKey := make(map[string]*candidate, len(candidates))
	ordered := make([]*candidate, 0, len(candidates))
	for i, raw := range candidates {
		key := strings.ToLower(strings.TrimSpace(raw))
		length := utf8.RuneCountInString(key)
		if length == 0 || length < r.minTagLength {
			continue
		}
		if c, ok := byKey[key]; ok {
			c.count++
			continue
		}
		c := &candidate{key: key, count: 1, length: length, firstSeen: i}
		byKey[key] = c
		ordered = append(ordered, c)
	}

	slices.SortStableFunc(ordered, r.compare)

	seen := make(map[string]struct{}, r.topN)
	for _, c := range ordered {
		tag := titleCase(c.key)
		folded := strings.ToLower(tag)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == r.topN {
			break
		}
	}
	return tags
}

// TagText extracts candidate phrases from text and ranks them. Text above
// the input ceiling is never sent to the extractor.
func (r *Ranker) TagText(ctx context.Context, extractor ai.PhraseExtractor, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if r.maxInputChars > 0 && utf8.RuneCountInString(text) > r.maxInputChars {
		r.logger.Debug("text above ceiling, skipping extraction", "max_chars", r.maxInputChars)
		return []string{}, nil
	}

	phrases, err := extractor.ExtractPhrases(ctx, text)
	if err != nil {
		return nil, err
	}
	return r.Rank(phrases), nil
}

func (r *Ranker) compare(a, b *candidate) int {
	if a.count != b.count {
		return b.count - a.count
	}
	if r.tieBreak == TieBreakLonger && a.length != b.length {
		return b.length - a.length
	}
	return a.firstSeen - b.firstSeen
}

func (r *Ranker) exceedsCeiling(candidates []string) bool {
	if r.maxInputChars <= 0 {
		return false
	}
	total := 0
	for _, c := range candidates {
		total += utf8.RuneCountInString(c)
		if total > r.maxInputChars {
			return true
		}
	}
	return false
}

// titleCase capitalizes the first letter of each whitespace-delimited word
// and lower-cases the rest. Runs of whitespace collapse to a single space.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
