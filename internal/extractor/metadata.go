package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"labparse/internal/domain"
)

// StudyKeyword maps a keyword found in report text to a canonical study
// type name.
type StudyKeyword struct {
	Keyword string
	Name    string
}

// DefaultStudyKeywords is searched in order; the first keyword present wins.
var DefaultStudyKeywords = []StudyKeyword{
	{Keyword: "общий анализ крови", Name: "Общий анализ крови"},
	{Keyword: "клинический анализ крови", Name: "Общий анализ крови"},
	{Keyword: "complete blood count", Name: "Общий анализ крови"},
	{Keyword: "биохимический анализ крови", Name: "Биохимический анализ крови"},
	{Keyword: "биохимия крови", Name: "Биохимический анализ крови"},
	{Keyword: "blood chemistry", Name: "Биохимический анализ крови"},
	{Keyword: "липидный профиль", Name: "Липидный профиль"},
	{Keyword: "липидограмма", Name: "Липидный профиль"},
	{Keyword: "lipid panel", Name: "Липидный профиль"},
	{Keyword: "общий анализ мочи", Name: "Общий анализ мочи"},
	{Keyword: "urinalysis", Name: "Общий анализ мочи"},
	{Keyword: "коагулограмма", Name: "Коагулограмма"},
	{Keyword: "гормоны щитовидной железы", Name: "Гормоны щитовидной железы"},
	{Keyword: "thyroid panel", Name: "Гормоны щитовидной железы"},
	{Keyword: "гликированный гемоглобин", Name: "Гликированный гемоглобин"},
}

// dateRe matches DD.MM.YYYY, DD/MM/YYYY and DD-MM-YYYY.
var dateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b|\b(\d{1,2})/(\d{1,2})/(\d{4})\b|\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)

var laboratoryRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:лаборатория|laboratory|\blab\b)[^\S\n]*[:：][^\S\n]*([^\n]+)`),
	regexp.MustCompile(`(?i)(?:медицинский центр|клиника|medical center|clinic)[^\S\n]*[:：][^\S\n]*([^\n]+)`),
}

// knownLabs are lab networks recognizable by name alone.
var knownLabs = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)инвитро|\binvitro\b`), "Инвитро"},
	{regexp.MustCompile(`(?i)гемотест|\bgemotest\b`), "Гемотест"},
	{regexp.MustCompile(`(?i)хеликс|\bhelix\b`), "Хеликс"},
	{regexp.MustCompile(`(?i)ситилаб|\bcitilab\b`), "Ситилаб"},
	{regexp.MustCompile(`\bKDL\b|КДЛ`), "KDL"},
}

var doctorRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:врач(?:-\pL+)?|доктор|doctor|physician)[^\S\n]*[:：][^\S\n]*([^\n]+)`),
	regexp.MustCompile(`(?i)(?:исполнитель|performed by)[^\S\n]*[:：][^\S\n]*([^\n]+)`),
}

const maxFieldRunes = 120

// Metadata is the document-level information found by ExtractMetadata.
// Nil fields were not found.
type Metadata struct {
	StudyType  *string
	StudyDate  *domain.Date
	Laboratory *string
	Doctor     *string
}

// MetadataExtractor applies study-type, date, laboratory and doctor
// heuristics. It never fails; missing fields stay nil.
type MetadataExtractor struct {
	keywords []StudyKeyword
}

// NewMetadataExtractor creates an extractor using keywords for study type
// detection; nil selects DefaultStudyKeywords.
func NewMetadataExtractor(keywords []StudyKeyword) *MetadataExtractor {
	if keywords == nil {
		keywords = DefaultStudyKeywords
	}
	return &MetadataExtractor{keywords: keywords}
}

// Extract runs every heuristic over text.
func (m *MetadataExtractor) Extract(text string) Metadata {
	return Metadata{
		StudyType:  m.studyType(text),
		StudyDate:  StudyDate(text),
		Laboratory: laboratory(text),
		Doctor:     firstField(text, doctorRes),
	}
}

func (m *MetadataExtractor) studyType(text string) *string {
	lower := strings.ToLower(text)
	for _, k := range m.keywords {
		if strings.Contains(lower, strings.ToLower(k.Keyword)) {
			return domain.StringPtr(k.Name)
		}
	}
	return nil
}

// StudyDate returns the first DD.MM.YYYY, DD/MM/YYYY or DD-MM-YYYY date in
// text. If that first date is not a real calendar date the result is nil;
// later dates are not considered.
func StudyDate(text string) *domain.Date {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	for g := 1; g+2 < len(m); g += 3 {
		if m[g] == "" {
			continue
		}
		day, _ := strconv.Atoi(m[g])
		month, _ := strconv.Atoi(m[g+1])
		year, _ := strconv.Atoi(m[g+2])
		d, ok := domain.NewDate(year, month, day)
		if !ok {
			return nil
		}
		return &d
	}
	return nil
}

func laboratory(text string) *string {
	if v := firstField(text, laboratoryRes); v != nil {
		return v
	}
	for _, l := range knownLabs {
		if l.re.MatchString(text) {
			return domain.StringPtr(l.name)
		}
	}
	return nil
}

func firstField(text string, res []*regexp.Regexp) *string {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := cleanField(m[1]); v != "" {
			return domain.StringPtr(v)
		}
	}
	return nil
}

func cleanField(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ",;:")
	if utf8.RuneCountInString(s) > maxFieldRunes {
		s = string([]rune(s)[:maxFieldRunes])
	}
	return strings.TrimSpace(s)
}
