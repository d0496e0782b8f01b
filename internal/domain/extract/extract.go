// Package extract turns raw comment text into structured dungeon
// submissions.
//
// Each field is resolved by an ordered list of independent matchers
// evaluated in priority order; the first match wins. Layout is the only
// mandatory field: a comment with no exact 100-character {0,1} run is
// not a submission.
package extract

import (
	"regexp"

	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/pkg/metrics"
)

// Layout matchers, highest priority first: labeled "Layout:", assignment
// "layout=", then any bare run. Runs are captured greedily and checked
// for exact length so that a 150-character run never yields its prefix.
var layoutMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)layout:\s*([01]+)`),
	regexp.MustCompile(`(?i)layout\s*=\s*([01]+)`),
	regexp.MustCompile(`([01]+)`),
}

// Monster matchers: a single word token after the label.
var monsterMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)monster:\s*(\w+)`),
	regexp.MustCompile(`(?i)monster\s*=\s*(\w+)`),
}

// Modifier matchers: word characters and spaces up to end of line.
var modifierMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)modifier:[ \t]*([\w ]+)`),
	regexp.MustCompile(`(?i)modifier[ \t]*=[ \t]*([\w ]+)`),
}

// Extractor parses comments into candidate submissions.
type Extractor struct {
	defaultMonster  string
	defaultModifier string
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithDefaultMonster sets the fallback monster identifier.
func WithDefaultMonster(monster string) Option {
	return func(e *Extractor) {
		if monster != "" {
			e.defaultMonster = monster
		}
	}
}

// WithDefaultModifier sets the fallback modifier identifier.
func WithDefaultModifier(modifier string) Option {
	return func(e *Extractor) {
		if modifier != "" {
			e.defaultModifier = modifier
		}
	}
}

// New constructs an Extractor with configuration options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		defaultMonster:  model.DefaultMonster,
		defaultModifier: model.DefaultModifier,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Parse classifies a single comment. It returns the structured
// submission and true, or a zero value and false when the comment does
// not contain a valid layout.
func (e *Extractor) Parse(c model.Comment) (model.CommentSubmission, bool) {
	layout, ok := extractLayout(c.Body)
	if !ok {
		metrics.RecordSubmissionRejected()
		return model.CommentSubmission{}, false
	}

	metrics.RecordSubmissionExtracted()
	return model.CommentSubmission{
		Layout:    layout,
		Monster:   e.extractMonster(c.Body),
		Modifier:  e.extractModifier(c.Body),
		Upvotes:   c.Score,
		CommentID: c.ID,
		Author:    c.Author,
	}, true
}

// extractLayout returns the first run of exactly LayoutLength {0,1}
// characters found by the matchers in priority order.
func extractLayout(text string) (string, bool) {
	for _, re := range layoutMatchers {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m[1]) == model.LayoutLength {
				return m[1], true
			}
		}
	}
	return "", false
}

func (e *Extractor) extractMonster(text string) string {
	for _, re := range monsterMatchers {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return e.defaultMonster
}

func (e *Extractor) extractModifier(text string) string {
	for _, re := range modifierMatchers {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := trimSpaces(m[1]); v != "" {
				return v
			}
		}
	}
	return e.defaultModifier
}

// trimSpaces trims leading and trailing spaces without touching inner
// whitespace.
func trimSpaces(s string) string {
	start := 0
	for start < len(s) && s[start] == ' ' {
		start++
	}
	end := len(s)
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}
