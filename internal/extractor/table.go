package extractor

import (
	"log"
	"regexp"
	"strings"

	"labparse/internal/catalog"
	"labparse/internal/domain"
)

// TableParser reads table-format reports, where a section header is
// followed by a block of bare values aligned positionally with the
// section's templates.
type TableParser struct {
	sections  []catalog.Section
	headers   []*regexp.Regexp
	boundary  *regexp.Regexp
	stopWords *regexp.Regexp
}

// NewTableParser compiles header and stop-keyword matchers for cat.
func NewTableParser(cat *catalog.Catalog) *TableParser {
	sections := cat.Sections()
	p := &TableParser{
		sections: sections,
		headers:  make([]*regexp.Regexp, len(sections)),
	}

	var all []string
	for i, s := range sections {
		quoted := quoteAll(s.Headers)
		p.headers[i] = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
		all = append(all, quoted...)
	}
	if len(all) > 0 {
		p.boundary = regexp.MustCompile(`(?i)(?:` + strings.Join(all, "|") + `)`)
	}
	if stops := cat.StopKeywords(); len(stops) > 0 {
		p.stopWords = regexp.MustCompile(`(?i)(?:` + strings.Join(quoteAll(stops), "|") + `)`)
	}
	return p
}

// Parse returns the indicators of every section whose header appears in
// text, in catalog section order. An indicator listed by two sections is
// emitted once, from the first. Text without any known header yields an
// empty slice.
func (p *TableParser) Parse(text string) []domain.ExtractedIndicator {
	indicators := []domain.ExtractedIndicator{}
	seen := make(map[string]bool)
	for i, section := range p.sections {
		window, ok := p.window(text, i)
		if !ok {
			log.Printf("extractor.TableParser: header not found section=%q", section.Name)
			continue
		}
		for _, ind := range p.parseSection(section, window) {
			if seen[ind.Name] {
				continue
			}
			seen[ind.Name] = true
			indicators = append(indicators, ind)
		}
	}
	return indicators
}

// window returns the text between section i's header and the next known
// header or stop keyword, whichever comes first.
func (p *TableParser) window(text string, i int) (string, bool) {
	loc := p.headers[i].FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	end := len(rest)
	if next := p.boundary.FindStringIndex(rest); next != nil && next[0] < end {
		end = next[0]
	}
	if p.stopWords != nil {
		if stop := p.stopWords.FindStringIndex(rest); stop != nil && stop[0] < end {
			end = stop[0]
		}
	}
	return rest[:end], true
}

func (p *TableParser) parseSection(section catalog.Section, window string) []domain.ExtractedIndicator {
	tokens := numberRe.FindAllString(window, -1)
	if len(tokens) != len(section.Templates) {
		log.Printf("extractor.TableParser: value count mismatch section=%q values=%d indicators=%d",
			section.Name, len(tokens), len(section.Templates))
	}

	var out []domain.ExtractedIndicator
	for i, tmpl := range section.Templates {
		if i >= len(tokens) {
			break
		}
		value, ok := ParseNumber(tokens[i])
		if !ok {
			log.Printf("extractor.TableParser: skipping malformed token %q for %s", tokens[i], tmpl.CanonicalName)
			continue
		}
		// A zero where the range starts above zero is an empty cell read as 0.
		if value == 0 && tmpl.ReferenceMin > 0 {
			continue
		}
		out = append(out, Classify(tmpl, value))
	}
	return out
}

func quoteAll(words []string) []string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return quoted
}
