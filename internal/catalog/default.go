package catalog

// word matches a Cyrillic indicator term standing on its own: at line start
// or after punctuation, and not continued by another letter. It keeps
// "гемоглобин" from firing inside "гликированный гемоглобин" or
// "концентрация гемоглобина".
func word(terms string) string {
	return `(?:(?m:^)|[^\pL\s])[^\S\n]*(?:` + terms + `)(?:[^\pL\d]|$)`
}

var (
	hgb  = IndicatorTemplate{CanonicalName: "Гемоглобин (HGB)", Unit: "г/л", ReferenceMin: 120, ReferenceMax: 160}
	rbc  = IndicatorTemplate{CanonicalName: "Эритроциты (RBC)", Unit: "10^12/л", ReferenceMin: 4.0, ReferenceMax: 5.5}
	hct  = IndicatorTemplate{CanonicalName: "Гематокрит (HCT)", Unit: "%", ReferenceMin: 36, ReferenceMax: 48}
	mcv  = IndicatorTemplate{CanonicalName: "Средний объем эритроцита (MCV)", Unit: "фл", ReferenceMin: 80, ReferenceMax: 100}
	mch  = IndicatorTemplate{CanonicalName: "Среднее содержание гемоглобина (MCH)", Unit: "пг", ReferenceMin: 27, ReferenceMax: 34}
	mchc = IndicatorTemplate{CanonicalName: "Средняя концентрация гемоглобина (MCHC)", Unit: "г/л", ReferenceMin: 300, ReferenceMax: 380}
	rdw  = IndicatorTemplate{CanonicalName: "Ширина распределения эритроцитов (RDW)", Unit: "%", ReferenceMin: 11.5, ReferenceMax: 14.5}
	esr  = IndicatorTemplate{CanonicalName: "СОЭ (ESR)", Unit: "мм/ч", ReferenceMin: 2, ReferenceMax: 15}

	wbc = IndicatorTemplate{CanonicalName: "Лейкоциты (WBC)", Unit: "10^9/л", ReferenceMin: 4.0, ReferenceMax: 9.0}
	neu = IndicatorTemplate{CanonicalName: "Нейтрофилы (NEU)", Unit: "%", ReferenceMin: 47, ReferenceMax: 72}
	lym = IndicatorTemplate{CanonicalName: "Лимфоциты (LYM)", Unit: "%", ReferenceMin: 19, ReferenceMax: 37}
	mon = IndicatorTemplate{CanonicalName: "Моноциты (MON)", Unit: "%", ReferenceMin: 3, ReferenceMax: 11}
	eos = IndicatorTemplate{CanonicalName: "Эозинофилы (EOS)", Unit: "%", ReferenceMin: 0.5, ReferenceMax: 5}
	bas = IndicatorTemplate{CanonicalName: "Базофилы (BAS)", Unit: "%", ReferenceMin: 0, ReferenceMax: 1}

	plt = IndicatorTemplate{CanonicalName: "Тромбоциты (PLT)", Unit: "10^9/л", ReferenceMin: 180, ReferenceMax: 320}
	mpv = IndicatorTemplate{CanonicalName: "Средний объем тромбоцитов (MPV)", Unit: "фл", ReferenceMin: 7.4, ReferenceMax: 10.4}
	pct = IndicatorTemplate{CanonicalName: "Тромбокрит (PCT)", Unit: "%", ReferenceMin: 0.15, ReferenceMax: 0.4}

	glu   = IndicatorTemplate{CanonicalName: "Глюкоза (GLU)", Unit: "ммоль/л", ReferenceMin: 3.9, ReferenceMax: 6.1}
	tp    = IndicatorTemplate{CanonicalName: "Общий белок (TP)", Unit: "г/л", ReferenceMin: 64, ReferenceMax: 83}
	crea  = IndicatorTemplate{CanonicalName: "Креатинин (CREA)", Unit: "мкмоль/л", ReferenceMin: 62, ReferenceMax: 115}
	urea  = IndicatorTemplate{CanonicalName: "Мочевина (UREA)", Unit: "ммоль/л", ReferenceMin: 2.5, ReferenceMax: 8.3}
	tbil  = IndicatorTemplate{CanonicalName: "Билирубин общий (TBIL)", Unit: "мкмоль/л", ReferenceMin: 3.4, ReferenceMax: 20.5}
	alt   = IndicatorTemplate{CanonicalName: "АЛТ (ALT)", Unit: "Ед/л", ReferenceMin: 0, ReferenceMax: 41}
	ast   = IndicatorTemplate{CanonicalName: "АСТ (AST)", Unit: "Ед/л", ReferenceMin: 0, ReferenceMax: 37}
	hba1c = IndicatorTemplate{CanonicalName: "Гликированный гемоглобин (HbA1c)", Unit: "%", ReferenceMin: 4.0, ReferenceMax: 6.0}

	chol = IndicatorTemplate{CanonicalName: "Холестерин общий (CHOL)", Unit: "ммоль/л", ReferenceMin: 3.0, ReferenceMax: 5.2}
	ldl  = IndicatorTemplate{CanonicalName: "Холестерин ЛПНП (LDL)", Unit: "ммоль/л", ReferenceMin: 0, ReferenceMax: 3.3}
	hdl  = IndicatorTemplate{CanonicalName: "Холестерин ЛПВП (HDL)", Unit: "ммоль/л", ReferenceMin: 1.0, ReferenceMax: 2.2}
	tg   = IndicatorTemplate{CanonicalName: "Триглицериды (TG)", Unit: "ммоль/л", ReferenceMin: 0.4, ReferenceMax: 1.7}
)

// DefaultSections lists the table-format sections in the order they are
// searched.
func DefaultSections() []Section {
	return []Section{
		{
			Name:      "Erythrocyte parameters",
			Headers:   []string{"Erythrocyte parameters", "Эритроцитарные параметры", "Показатели эритроцитов"},
			Templates: []IndicatorTemplate{hgb, rbc, hct, mcv, mch, mchc, rdw},
		},
		{
			Name:      "Leukocyte parameters",
			Headers:   []string{"Leukocyte parameters", "Лейкоцитарные параметры"},
			Templates: []IndicatorTemplate{wbc, neu, lym, mon, eos, bas},
		},
		{
			// A differential lists percentages only, without the WBC count.
			Name:      "Leukocyte differential",
			Headers:   []string{"Leukocyte differential", "Лейкоцитарная формула"},
			Templates: []IndicatorTemplate{neu, lym, mon, eos, bas},
		},
		{
			Name:      "Platelet parameters",
			Headers:   []string{"Platelet parameters", "Тромбоцитарные параметры", "Показатели тромбоцитов"},
			Templates: []IndicatorTemplate{plt, mpv, pct},
		},
		{
			Name:      "Biochemical parameters",
			Headers:   []string{"Biochemical parameters", "Биохимические показатели"},
			Templates: []IndicatorTemplate{glu, tp, crea, urea, tbil, alt, ast},
		},
		{
			Name:      "Lipid profile",
			Headers:   []string{"Lipid profile", "Липидный спектр"},
			Templates: []IndicatorTemplate{chol, ldl, hdl, tg},
		},
	}
}

// DefaultEntries lists the regex-extractor entries in emission order.
func DefaultEntries() []Entry {
	return []Entry{
		{IndicatorTemplate: hgb, Synonyms: word(`гемоглобин|hemoglobin|haemoglobin`) + `|\bhgb\b|\bhb\b`, Except: `гликир|гликозил|glycated|\bhba1c\b`},
		{IndicatorTemplate: rbc, Synonyms: word(`эритроциты|erythrocytes`) + `|\brbc\b|red blood cells`},
		{IndicatorTemplate: hct, Synonyms: word(`гематокрит|hematocrit|haematocrit`) + `|\bhct\b`},
		{IndicatorTemplate: mcv, Synonyms: `средний объ[её]м эритроцит\pL*|\bmcv\b`},
		{IndicatorTemplate: mch, Synonyms: `среднее содержание гемоглобина\pL*|\bmch\b`},
		{IndicatorTemplate: mchc, Synonyms: `средняя концентрация гемоглобина\pL*|\bmchc\b`},
		{IndicatorTemplate: rdw, Synonyms: `ширина распределения эритроцитов|\brdw(?:-cv)?\b`},
		{IndicatorTemplate: wbc, Synonyms: word(`лейкоциты|leukocytes`) + `|\bwbc\b|white blood cells`},
		{IndicatorTemplate: neu, Synonyms: word(`нейтрофилы|neutrophils`) + `|\bneut?\b`},
		{IndicatorTemplate: lym, Synonyms: word(`лимфоциты|lymphocytes`) + `|\blym(?:ph)?\b`},
		{IndicatorTemplate: mon, Synonyms: word(`моноциты|monocytes`) + `|\bmono?\b`},
		{IndicatorTemplate: eos, Synonyms: word(`эозинофилы|eosinophils`) + `|\beos\b`},
		{IndicatorTemplate: bas, Synonyms: word(`базофилы|basophils`) + `|\bbaso?\b`},
		{IndicatorTemplate: plt, Synonyms: word(`тромбоциты|platelets`) + `|\bplt\b`},
		{IndicatorTemplate: mpv, Synonyms: `средний объ[её]м тромбоцит\pL*|\bmpv\b`},
		{IndicatorTemplate: pct, Synonyms: word(`тромбокрит|plateletcrit`) + `|\bpct\b`},
		{IndicatorTemplate: esr, Synonyms: word(`соэ`) + `|скорость оседания эритроцитов|\besr\b`},
		{IndicatorTemplate: glu, Synonyms: word(`глюкоза|glucose`) + `|\bglu\b`},
		{IndicatorTemplate: hba1c, Synonyms: `(?:(?:гликированный|гликозилированный) гемоглобин|гемоглобин (?:гликированный|гликозилированный))(?:[^\S\n]*\(hba1c\))?|\bhba1c\b`},
		{IndicatorTemplate: tp, Synonyms: `общий белок|белок общий|total protein`},
		{IndicatorTemplate: crea, Synonyms: word(`креатинин|creatinine`) + `|\bcrea\b`},
		{IndicatorTemplate: urea, Synonyms: word(`мочевина|urea`)},
		{IndicatorTemplate: tbil, Synonyms: `билирубин общий|общий билирубин|total bilirubin|\bt-?bil\b`},
		{IndicatorTemplate: alt, Synonyms: `аланинаминотрансфераза` + `|` + word(`алт|алат`) + `|\balt\b`},
		{IndicatorTemplate: ast, Synonyms: `аспартатаминотрансфераза` + `|` + word(`аст|асат`) + `|\bast\b`},
		{IndicatorTemplate: chol, Synonyms: `холестерин общий|общий холестерин|total cholesterol|\bchol\b`},
		{IndicatorTemplate: ldl, Synonyms: `лпнп|\bldl\b`},
		{IndicatorTemplate: hdl, Synonyms: `лпвп|\bhdl\b`},
		{IndicatorTemplate: tg, Synonyms: word(`триглицериды|triglycerides`) + `|\btg\b`},
	}
}

// DefaultStopKeywords end a table section window early.
func DefaultStopKeywords() []string {
	return []string{
		"Комментарий", "Заключение", "Примечание", "Врач", "Исполнитель",
		"Comment", "Conclusion", "Doctor", "Notes",
	}
}

var defaultCatalog = MustNew(DefaultSections(), DefaultEntries(), DefaultStopKeywords())

// Default returns the built-in catalog. The returned value is shared.
func Default() *Catalog {
	return defaultCatalog
}
