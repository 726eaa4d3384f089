// Package catalog holds the static indicator knowledge used by the
// deterministic extractors: canonical names, units, reference ranges, the
// ordered sections of table-format reports and the synonym patterns of the
// regex extractor.
//
// A Catalog is immutable after construction and safe for concurrent use
// without synchronization.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"labparse/internal/domain"
)

// IndicatorTemplate is the catalog description of one indicator.
type IndicatorTemplate struct {
	CanonicalName string
	Unit          string
	ReferenceMin  float64
	ReferenceMax  float64
}

// Section is a titled block of a table-format report. Templates are listed
// in the order their values appear under the header.
type Section struct {
	Name      string
	Headers   []string
	Templates []IndicatorTemplate
}

// Entry is one regex-extractor catalog row. Synonyms is a regular
// expression fragment (no capture groups) matching every accepted spelling
// of the indicator name. Except, when set, is a fragment that disqualifies
// a match whose name or gap contains it (e.g. "гемоглобин гликированный"
// for hemoglobin).
type Entry struct {
	IndicatorTemplate
	Synonyms string
	Except   string
}

// numberPattern matches a numeric token with an optional comma or dot
// decimal separator.
const numberPattern = `\d+[,.]?\d*`

// valueGap is what may sit between an indicator name and its value: colons,
// dashes, words and whole parenthesised groups such as "(HbA1c)" or
// "(норма 120-160)". Digits outside parentheses and newlines end it.
const valueGap = `(?:[^\d\n(]|\([^)\n]*\)){0,40}?`

// Pattern is a compiled regex entry.
type Pattern struct {
	Entry
	// Match finds the name followed by its value; group 1 is the value.
	Match *regexp.Regexp
	// Name matches the synonyms at the start of a free-form indicator name.
	Name *regexp.Regexp
	// Except rejects Match and Name hits; nil when the entry has none.
	Except *regexp.Regexp
}

// FindValue returns the value of the first match in text that Except does
// not reject.
func (p Pattern) FindValue(text string) (string, bool) {
	for _, m := range p.Match.FindAllStringSubmatch(text, -1) {
		if p.Except != nil && p.Except.MatchString(m[0]) {
			continue
		}
		return m[1], true
	}
	return "", false
}

// nameMatch returns the length of the synonym prefix of name, or -1.
func (p Pattern) nameMatch(name string) int {
	if p.Except != nil && p.Except.MatchString(name) {
		return -1
	}
	loc := p.Name.FindStringIndex(name)
	if loc == nil {
		return -1
	}
	return loc[1]
}

// Catalog bundles sections, compiled patterns and stop keywords.
type Catalog struct {
	sections     []Section
	patterns     []Pattern
	stopKeywords []string
	byKey        map[string]IndicatorTemplate
	byAbbrev     map[string]IndicatorTemplate
}

// abbrevRe finds a parenthesised abbreviation such as "(HGB)".
var abbrevRe = regexp.MustCompile(`\(([^()]+)\)`)

func abbreviation(name string) string {
	m := abbrevRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return NormalizeName(m[1])
}

// New compiles a catalog from sections, regex entries and the keywords that
// terminate a table section window.
func New(sections []Section, entries []Entry, stopKeywords []string) (*Catalog, error) {
	c := &Catalog{
		sections:     sections,
		stopKeywords: stopKeywords,
		byKey:        make(map[string]IndicatorTemplate),
		byAbbrev:     make(map[string]IndicatorTemplate),
	}

	for i, s := range sections {
		if len(s.Headers) == 0 {
			return nil, fmt.Errorf("%w: section %d (%s) has no headers", domain.ErrInvalidCatalog, i, s.Name)
		}
		for _, t := range s.Templates {
			if t.ReferenceMin > t.ReferenceMax {
				return nil, fmt.Errorf("%w: %s has min %v > max %v", domain.ErrInvalidCatalog, t.CanonicalName, t.ReferenceMin, t.ReferenceMax)
			}
			c.register(t)
		}
	}

	for _, e := range entries {
		if e.ReferenceMin > e.ReferenceMax {
			return nil, fmt.Errorf("%w: %s has min %v > max %v", domain.ErrInvalidCatalog, e.CanonicalName, e.ReferenceMin, e.ReferenceMax)
		}
		match, err := regexp.Compile(`(?i)(?:` + e.Synonyms + `)` + valueGap + `(` + numberPattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w: compiling pattern for %s: %v", domain.ErrInvalidCatalog, e.CanonicalName, err)
		}
		name, err := regexp.Compile(`(?i)^\s*(?:` + e.Synonyms + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w: compiling name pattern for %s: %v", domain.ErrInvalidCatalog, e.CanonicalName, err)
		}
		pattern := Pattern{Entry: e, Match: match, Name: name}
		if e.Except != "" {
			pattern.Except, err = regexp.Compile(`(?i)(?:` + e.Except + `)`)
			if err != nil {
				return nil, fmt.Errorf("%w: compiling exception for %s: %v", domain.ErrInvalidCatalog, e.CanonicalName, err)
			}
		}
		c.patterns = append(c.patterns, pattern)
		c.register(e.IndicatorTemplate)
	}

	return c, nil
}

func (c *Catalog) register(t IndicatorTemplate) {
	c.byKey[NormalizeName(t.CanonicalName)] = t
	if abbr := abbreviation(t.CanonicalName); abbr != "" {
		if _, taken := c.byAbbrev[abbr]; !taken {
			c.byAbbrev[abbr] = t
		}
	}
}

// MustNew is like New but panics on error. Intended for package-level
// literals known to be valid.
func MustNew(sections []Section, entries []Entry, stopKeywords []string) *Catalog {
	c, err := New(sections, entries, stopKeywords)
	if err != nil {
		panic(err)
	}
	return c
}

// Sections returns the table sections in declaration order.
func (c *Catalog) Sections() []Section {
	return c.sections
}

// Patterns returns the compiled regex entries in emission order.
func (c *Catalog) Patterns() []Pattern {
	return c.patterns
}

// StopKeywords returns the words that end a table section window.
func (c *Catalog) StopKeywords() []string {
	return c.stopKeywords
}

// Lookup resolves a free-form indicator name (canonical name, synonym or
// abbreviation) to its template. An exact canonical name wins, then a
// parenthesised abbreviation naming a catalog indicator, then the entry
// whose synonyms cover the longest prefix of name.
func (c *Catalog) Lookup(name string) (IndicatorTemplate, bool) {
	if t, ok := c.byKey[NormalizeName(name)]; ok {
		return t, true
	}
	if abbr := abbreviation(name); abbr != "" {
		if t, ok := c.byAbbrev[abbr]; ok {
			return t, true
		}
	}
	best, bestLen := -1, -1
	for i, p := range c.patterns {
		if n := p.nameMatch(name); n > bestLen {
			best, bestLen = i, n
		}
	}
	if best < 0 {
		return IndicatorTemplate{}, false
	}
	return c.patterns[best].IndicatorTemplate, true
}

// Key returns the merge key of an indicator name: the normalized canonical
// name when the catalog knows the indicator, the normalized input otherwise.
func (c *Catalog) Key(name string) string {
	if t, ok := c.Lookup(name); ok {
		return NormalizeName(t.CanonicalName)
	}
	return NormalizeName(name)
}

// NormalizeName folds case, applies NFKC and collapses whitespace.
func NormalizeName(name string) string {
	s := norm.NFKC.String(name)
	// A Caser carries state, so each call gets its own.
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}
