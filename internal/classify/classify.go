// Package classify decides whether OCR text came from a wine label or a
// receipt by scoring it against two weighted indicator vocabularies.
package classify

import (
	"math"
	"strings"

	"github.com/nukk-pain/wine-sub001/internal/document"
)

// Config holds the named decision thresholds
type Config struct {
	// Floor is the minimum winning score; below it the text is unknown
	Floor float64
	// Margin is the tie band; a lead smaller than this is unknown
	Margin float64
	// Saturation is the matched indicator weight that maps to a full score
	Saturation float64
}

// DefaultConfig returns the thresholds used by Classify
func DefaultConfig() Config {
	return Config{
		Floor:      0.30,
		Margin:     0.15,
		Saturation: 3.0,
	}
}

// Classifier scores text against the wine-label and receipt vocabularies
type Classifier struct {
	cfg     Config
	wine    Vocabulary
	receipt Vocabulary
}

// New creates a classifier with the default vocabularies.
// A non-positive Saturation falls back to the default.
func New(cfg Config) *Classifier {
	if cfg.Saturation <= 0 {
		cfg.Saturation = DefaultConfig().Saturation
	}
	return &Classifier{
		cfg:     cfg,
		wine:    WineVocabulary,
		receipt: ReceiptVocabulary,
	}
}

// Config returns the thresholds in effect
func (c *Classifier) Config() Config {
	return c.cfg
}

var defaultClassifier = New(DefaultConfig())

// Classify scores text with the default configuration
func Classify(text string) document.Classification {
	return defaultClassifier.Classify(text)
}

// Classify returns the document type guess for text.
// Empty input is unknown with zero confidence.
func (c *Classifier) Classify(text string) document.Classification {
	unknown := document.Classification{Type: document.TypeUnknown, Indicators: []string{}}
	if strings.TrimSpace(text) == "" {
		return unknown
	}

	lower := strings.ToLower(text)
	wineScore, wineTokens := c.score(c.wine, lower)
	receiptScore, receiptTokens := c.score(c.receipt, lower)

	best, other := wineScore, receiptScore
	winner := document.Classification{Type: c.wine.Type, Confidence: wineScore, Indicators: wineTokens}
	if receiptScore > wineScore {
		best, other = receiptScore, wineScore
		winner = document.Classification{Type: c.receipt.Type, Confidence: receiptScore, Indicators: receiptTokens}
	}

	if best < c.cfg.Floor || best-other < c.cfg.Margin {
		unknown.Confidence = best
		return unknown
	}
	return winner
}

// score sums the weights of distinct matched indicators, divides by the
// saturation weight and adds any boosts, capped at 1. One line contributes at
// most a strong cue's weight, so a single "Total: $30" line cannot outweigh
// a strong cue elsewhere. Indicators that only match across lines (date+time
// on separate lines) count at full weight. The returned tokens keep table
// order.
func (c *Classifier) score(v Vocabulary, lower string) (float64, []string) {
	seen := make(map[string]bool)
	weight := 0.0
	for _, line := range strings.Split(lower, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineWeight := 0.0
		for _, ind := range v.Indicators {
			if seen[ind.Token] || !ind.Match(line) {
				continue
			}
			seen[ind.Token] = true
			lineWeight += ind.Weight
		}
		weight += math.Min(lineWeight, Strong)
	}
	for _, ind := range v.Indicators {
		if seen[ind.Token] || !ind.Match(lower) {
			continue
		}
		seen[ind.Token] = true
		weight += ind.Weight
	}

	tokens := []string{}
	for _, ind := range v.Indicators {
		if seen[ind.Token] {
			tokens = append(tokens, ind.Token)
		}
	}

	s := weight / c.cfg.Saturation
	for _, b := range v.Boosts {
		if seen[b.Token] || !b.Match(lower) {
			continue
		}
		seen[b.Token] = true
		s += b.Weight
		tokens = append(tokens, b.Token)
	}
	return math.Min(s, 1), tokens
}
