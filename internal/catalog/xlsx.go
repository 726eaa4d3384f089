package catalog

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"labparse/internal/domain"
)

// SheetName is the worksheet LoadXLSX reads. When a workbook has no sheet by
// that name its first sheet is used.
const SheetName = "Catalog"

// Spreadsheet columns, in order. The first row is a header and is skipped.
const (
	colSection = iota
	colHeaders
	colIndicator
	colSynonyms
	colUnit
	colMin
	colMax
)

// LoadXLSX builds a catalog from a workbook maintained by lab staff. Each
// row describes one indicator:
//
//	Section | Header aliases (;) | Indicator | Synonyms (;) | Unit | Min | Max
//
// Rows sharing a Section form one table section, in first-appearance order;
// a row with an empty Section is only used by the regex extractor. Synonyms
// are plain names, not regular expressions. The default stop keywords apply.
func LoadXLSX(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	sections, entries, err := parseRows(rows)
	if err != nil {
		return nil, err
	}
	log.Printf("catalog.LoadXLSX: loaded path=%s sections=%d indicators=%d", path, len(sections), len(entries))
	return New(sections, entries, DefaultStopKeywords())
}

func parseRows(rows [][]string) ([]Section, []Entry, error) {
	var sections []Section
	sectionIdx := make(map[string]int)
	var entries []Entry

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := cellVal(row, colIndicator)
		if name == "" {
			continue
		}
		tmpl := IndicatorTemplate{CanonicalName: name, Unit: cellVal(row, colUnit)}

		var err error
		if tmpl.ReferenceMin, err = parseBound(cellVal(row, colMin)); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d (%s) min: %v", domain.ErrInvalidCatalog, i+1, name, err)
		}
		if tmpl.ReferenceMax, err = parseBound(cellVal(row, colMax)); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d (%s) max: %v", domain.ErrInvalidCatalog, i+1, name, err)
		}

		terms := append([]string{name}, splitList(cellVal(row, colSynonyms))...)
		entries = append(entries, Entry{IndicatorTemplate: tmpl, Synonyms: synonymPattern(terms)})

		sectionName := cellVal(row, colSection)
		if sectionName == "" {
			continue
		}
		idx, ok := sectionIdx[sectionName]
		if !ok {
			idx = len(sections)
			sectionIdx[sectionName] = idx
			sections = append(sections, Section{Name: sectionName, Headers: []string{sectionName}})
		}
		for _, h := range splitList(cellVal(row, colHeaders)) {
			if !contains(sections[idx].Headers, h) {
				sections[idx].Headers = append(sections[idx].Headers, h)
			}
		}
		sections[idx].Templates = append(sections[idx].Templates, tmpl)
	}

	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no indicator rows", domain.ErrInvalidCatalog)
	}
	return sections, entries, nil
}

// synonymPattern turns plain names into a Synonyms fragment. Each name must
// stand on its own, as with the built-in Cyrillic terms.
func synonymPattern(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, strings.Join(strings.Fields(regexp.QuoteMeta(t)), `\s+`))
	}
	return word(strings.Join(quoted, "|"))
}

func parseBound(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
