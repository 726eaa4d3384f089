package parser

// PromptVersion identifies the instruction prompt and output schema below.
// Bump it whenever either changes.
const PromptVersion = "lab-report-v3"

// SystemPrompt returns the fixed extraction instructions.
func SystemPrompt() string {
	return `You are a medical laboratory data extraction assistant. You receive the recognized text of a laboratory report (it may contain OCR noise, mixed Russian and English terminology, tables flattened into lines) and convert it into structured JSON.

Return ONLY a JSON object with no markdown formatting, no code fences and no explanation, following this schema exactly:
{
  "studyType": "string or null, e.g. Общий анализ крови",
  "studyDate": "YYYY-MM-DD or null",
  "laboratory": "string or null",
  "doctor": "string or null",
  "findings": "string or null, the conclusion or comment written in the report",
  "indicators": [
    {
      "name": "indicator name as written, with its abbreviation if present, e.g. Гемоглобин (HGB)",
      "value": 0,
      "unit": "string or null",
      "referenceMin": "number or null",
      "referenceMax": "number or null",
      "isNormal": "boolean or null"
    }
  ]
}

HARD RULES:
- Extract only values that are present in the text. Never invent, estimate or complete indicators, reference ranges or metadata.
- Use null for every field that is not present in the text.
- "value" must be a number. Use a dot as the decimal separator (5,4 becomes 5.4). Skip indicators whose value is not numeric.
- Take reference ranges from the report itself when printed; otherwise use null.
- Dates must be converted to YYYY-MM-DD.
- Return an empty "indicators" array when the text contains no measurements.`
}

// UserPrompt wraps the report text for the user turn.
func UserPrompt(text string) string {
	return "Laboratory report text:\n\n" + text
}

// ReportSchema is the JSON schema sent to providers that enforce structured
// output.
func ReportSchema() map[string]interface{} {
	nullable := func(t string) map[string]interface{} {
		return map[string]interface{}{"type": []string{t, "null"}}
	}
	indicator := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":         map[string]interface{}{"type": "string"},
			"value":        map[string]interface{}{"type": "number"},
			"unit":         nullable("string"),
			"referenceMin": nullable("number"),
			"referenceMax": nullable("number"),
			"isNormal":     nullable("boolean"),
		},
		"required":             []string{"name", "value", "unit", "referenceMin", "referenceMax", "isNormal"},
		"additionalProperties": false,
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"studyType":  nullable("string"),
			"studyDate":  nullable("string"),
			"laboratory": nullable("string"),
			"doctor":     nullable("string"),
			"findings":   nullable("string"),
			"indicators": map[string]interface{}{
				"type":  "array",
				"items": indicator,
			},
		},
		"required":             []string{"studyType", "studyDate", "laboratory", "doctor", "findings", "indicators"},
		"additionalProperties": false,
	}
}
