package service

import (
	"fmt"
	"os"
	"regexp"

	"resume-redactor/internal/domain"

	"gopkg.in/yaml.v3"
)

// Default detection patterns. Matching is case-insensitive.
const (
	PhonePattern      = `(\+?\d{1,4}[-.\s]?)?(\(?\d{1,4}\)?[-.\s]?)?(\d{3}[-.\s]?\d{3,4}[-.\s]?\d{3,4})\b`
	EmailPattern      = `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,7}\b`
	ProfileURLPattern = `\b(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9-]+/?\b`
	// DatePattern matches month/year tokens such as "03/2021" or "11 - 2019".
	DatePattern = `\b(0[1-9]|1[0-2])\s*[-/]\s*(19|20)\d{2}\b`
)

// Matcher finds sensitive spans of one kind.
type Matcher interface {
	Match(text string) []domain.Span
}

// RegexMatcher reports every non-overlapping match of a pattern.
type RegexMatcher struct {
	Category domain.SpanCategory
	re       *regexp.Regexp
}

// NewRegexMatcher compiles pattern case-insensitively.
func NewRegexMatcher(category domain.SpanCategory, pattern string) (*RegexMatcher, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern: %w", category, err)
	}
	return &RegexMatcher{Category: category, re: re}, nil
}

func mustRegexMatcher(category domain.SpanCategory, pattern string) *RegexMatcher {
	m, err := NewRegexMatcher(category, pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match implements Matcher.
func (m *RegexMatcher) Match(text string) []domain.Span {
	locs := m.re.FindAllStringIndex(text, -1)
	spans := make([]domain.Span, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, domain.Span{
			Text:     text[loc[0]:loc[1]],
			Category: m.Category,
			Start:    loc[0],
			End:      loc[1],
		})
	}
	return spans
}

// DefaultMatchers returns the phone, email and profile URL matchers.
func DefaultMatchers() []Matcher {
	return []Matcher{
		mustRegexMatcher(domain.CategoryPhone, PhonePattern),
		mustRegexMatcher(domain.CategoryEmail, EmailPattern),
		mustRegexMatcher(domain.CategoryProfileURL, ProfileURLPattern),
	}
}

// Detector runs independent matchers over a text and flags date-shaped
// tokens as excluded.
//
// The date check looks at the matched token only, anchored at its start.
// A real phone number whose token begins like "03-2021" is therefore not
// redacted; that false negative is accepted.
type Detector struct {
	matchers []Matcher
	date     *regexp.Regexp
}

// NewDetector creates a detector. With no matchers the defaults are used.
func NewDetector(matchers ...Matcher) *Detector {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Detector{
		matchers: matchers,
		date:     regexp.MustCompile(`^(?:` + DatePattern + `)`),
	}
}

// Detect returns every span found by every matcher. The same literal may be
// reported by several matchers; duplicates are kept.
func (d *Detector) Detect(text string) []domain.Span {
	var spans []domain.Span
	for _, m := range d.matchers {
		for _, span := range m.Match(text) {
			span.Excluded = d.IsDate(span.Text)
			spans = append(spans, span)
		}
	}
	return spans
}

// Sensitive returns the literals of every non-excluded span in text.
func (d *Detector) Sensitive(text string) []string {
	return domain.SensitiveLiterals(d.Detect(text))
}

// IsDate reports whether token starts with a month/year date.
func (d *Detector) IsDate(token string) bool {
	return d.date.MatchString(token)
}

// DetectorRules is the YAML document of additional matchers.
//
//	rules:
//	  - name: github
//	    category: profile_url
//	    pattern: '\bgithub\.com/[A-Za-z0-9-]+'
type DetectorRules struct {
	Rules []DetectorRule `yaml:"rules"`
}

// DetectorRule is one named regular expression.
type DetectorRule struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// LoadDetectorRules reads extra matchers from a YAML file.
func LoadDetectorRules(path string) ([]Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector rules: %w", err)
	}
	return ParseDetectorRules(data)
}

// ParseDetectorRules compiles the rules of a YAML document. Rules without a
// category are filed under "custom".
func ParseDetectorRules(data []byte) ([]Matcher, error) {
	var doc DetectorRules
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse detector rules: %w", err)
	}

	matchers := make([]Matcher, 0, len(doc.Rules))
	for i, rule := range doc.Rules {
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern is required", i+1, rule.Name)
		}
		category := domain.SpanCategory(rule.Category)
		if category == "" {
			category = domain.CategoryCustom
		}
		m, err := NewRegexMatcher(category, rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, rule.Name, err)
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
