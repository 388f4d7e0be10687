package analysis

import (
	"encoding/json"
	"strings"
)

// The interpreter is the last line of defense between free-form model text
// and the outcome invariants. It tries a structured JSON path first, falls
// back to keyword heuristics, and unconditionally repairs the result so the
// invariants hold no matter what text arrived.

type parseSource int

const (
	sourceStructured parseSource = iota
	sourceHeuristic
)

// parsed is the single intermediate shape both paths produce, tagged with
// its source, feeding one repair function.
type parsed struct {
	source          parseSource
	diseaseDetected bool
	diseaseName     string
	confidence      float64
	symptoms        []string
	recommendations []string
	severity        Severity
}

// interpret converts model text into invariant-satisfying outcome fields
// for the given category. It never fails: malformed input degrades to the
// heuristic path, and repair guarantees consistency either way.
func interpret(text string, category ItemCategory) parsed {
	p, ok := decodeStructured(text)
	if !ok {
		p = parseHeuristic(text)
	}
	return repair(p, category)
}

// --- structured path ---

// wireAnalysis is the lenient decode target for analysis responses.
// Pointers distinguish absent fields from zero values.
type wireAnalysis struct {
	DiseaseDetected *bool    `json:"diseaseDetected"`
	DiseaseName     *string  `json:"diseaseName"`
	Confidence      *float64 `json:"confidence"`
	Symptoms        []string `json:"symptoms"`
	Recommendations []string `json:"recommendations"`
	Severity        *string  `json:"severity"`
}

// decodeStructured reports ok=false when no decodable JSON analysis object
// is found in the text; the caller then takes the heuristic path. This is an
// ordinary return value, not error-driven control flow.
func decodeStructured(text string) (parsed, bool) {
	blob, ok := extractJSON(text)
	if !ok {
		return parsed{}, false
	}

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(blob), &wire); err != nil {
		return parsed{}, false
	}
	// A JSON object with no verdict at all is not an analysis response.
	if wire.DiseaseDetected == nil {
		return parsed{}, false
	}

	p := parsed{
		source:          sourceStructured,
		diseaseDetected: *wire.DiseaseDetected,
		symptoms:        cleanList(wire.Symptoms),
		recommendations: cleanList(wire.Recommendations),
	}
	if wire.DiseaseName != nil {
		p.diseaseName = strings.TrimSpace(*wire.DiseaseName)
	}
	if wire.Confidence != nil {
		p.confidence = clamp01(*wire.Confidence)
	} else {
		p.confidence = heuristicDefaultConfidence
	}
	if wire.Severity != nil {
		p.severity = parseSeverity(*wire.Severity)
	}
	return p, true
}

// extractJSON locates a JSON object within free-form text: first inside a
// fenced code block, then by brace-matching over the raw text.
func extractJSON(text string) (string, bool) {
	if fenced, ok := fencedBlock(text); ok {
		if blob, ok := braceScan(fenced); ok {
			return blob, true
		}
	}
	return braceScan(text)
}

// fencedBlock returns the contents of the first ``` fence, language tag
// stripped.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]

	// Drop a language tag like "json" up to the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		first := strings.TrimSpace(rest[:nl])
		if first != "" && !strings.ContainsAny(first, "{}") {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// braceScan finds the first balanced top-level JSON object, respecting
// string literals and escapes.
func braceScan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// --- heuristic path ---

// parseHeuristic classifies disease presence from keywords and phrases.
// Explicit healthy phrases take precedence and short-circuit, even when
// disease-sounding keywords also appear later in the text.
func parseHeuristic(text string) parsed {
	lower := strings.ToLower(text)

	p := parsed{
		source:     sourceHeuristic,
		confidence: qualifierConfidence(lower),
	}

	for _, phrase := range healthyPhrases {
		if strings.Contains(lower, phrase) {
			return p
		}
	}

	diseased := false
	for _, keyword := range diseaseKeywords {
		if strings.Contains(lower, keyword) {
			diseased = true
			break
		}
	}
	if !diseased {
		return p
	}

	p.diseaseDetected = true
	p.diseaseName = matchCatalog(lower)
	p.symptoms = matchSymptoms(lower)
	p.severity = qualifierSeverity(lower)
	return p
}

// matchCatalog derives a canonical disease name from the known-condition
// catalog, empty when nothing matches.
func matchCatalog(lower string) string {
	for _, entry := range diseaseCatalog {
		if strings.Contains(lower, entry.match) {
			return entry.name
		}
	}
	return ""
}

func matchSymptoms(lower string) []string {
	var symptoms []string
	seen := make(map[string]bool)
	for _, entry := range symptomKeywords {
		if strings.Contains(lower, entry.match) && !seen[entry.label] {
			symptoms = append(symptoms, entry.label)
			seen[entry.label] = true
		}
	}
	return symptoms
}

func qualifierConfidence(lower string) float64 {
	for _, w := range highConfidenceWords {
		if strings.Contains(lower, w) {
			return heuristicHighConfidence
		}
	}
	for _, w := range lowConfidenceWords {
		if strings.Contains(lower, w) {
			return heuristicLowConfidence
		}
	}
	return heuristicDefaultConfidence
}

func qualifierSeverity(lower string) Severity {
	for _, w := range highSeverityWords {
		if strings.Contains(lower, w) {
			return SeverityHigh
		}
	}
	for _, w := range lowSeverityWords {
		if strings.Contains(lower, w) {
			return SeverityLow
		}
	}
	return SeverityMedium
}

// --- invariant repair ---

// repair forces a possibly-inconsistent parsed result into a schema-valid
// one. Applied unconditionally on top of either path's output.
func repair(p parsed, category ItemCategory) parsed {
	// The neutral observation path must never emit disease fields.
	if category == CategoryUnrelated {
		p.diseaseDetected = false
	}

	if p.diseaseDetected {
		if p.diseaseName == "" {
			p.diseaseName = UnidentifiedDisease
		}
		if p.severity == "" || p.severity == SeverityNone {
			p.severity = SeverityMedium
		}
	} else {
		p.diseaseName = ""
		p.severity = SeverityNone
	}

	p.confidence = clamp01(p.confidence)
	if p.symptoms == nil {
		p.symptoms = []string{}
	}
	if p.recommendations == nil {
		p.recommendations = []string{}
	}
	return p
}

// --- detection & variety interpretation ---

type wireDetection struct {
	Category *string `json:"category"`
}

// interpretDetection maps the detection response onto an item category,
// defaulting to unrelated when nothing recognizable arrives.
func interpretDetection(text string) ItemCategory {
	candidate := text
	if blob, ok := extractJSON(text); ok {
		var wire wireDetection
		if err := json.Unmarshal([]byte(blob), &wire); err == nil && wire.Category != nil {
			candidate = *wire.Category
		}
	}

	lower := strings.ToLower(candidate)
	switch {
	case strings.Contains(lower, "leaf") || strings.Contains(lower, "leaves") || strings.Contains(lower, "foliage"):
		return CategoryLeaf
	case strings.Contains(lower, "fruit") || strings.Contains(lower, "lanzones") || strings.Contains(lower, "langsat"):
		return CategoryFruit
	default:
		return CategoryUnrelated
	}
}

type wireVariety struct {
	Variety         *string  `json:"variety"`
	Confidence      *float64 `json:"confidence"`
	Characteristics []string `json:"characteristics"`
	Description     *string  `json:"description"`
}

// interpretVariety extracts a variety sub-result, returning nil when nothing
// usable is present. Strictly best-effort.
func interpretVariety(text string) *VarietyResult {
	if blob, ok := extractJSON(text); ok {
		var wire wireVariety
		if err := json.Unmarshal([]byte(blob), &wire); err == nil && wire.Variety != nil {
			result := &VarietyResult{
				Variety:         parseVariety(*wire.Variety),
				Confidence:      heuristicDefaultConfidence,
				Characteristics: cleanList(wire.Characteristics),
			}
			if wire.Confidence != nil {
				result.Confidence = clamp01(*wire.Confidence)
			}
			if wire.Description != nil {
				result.Description = strings.TrimSpace(*wire.Description)
			}
			return result
		}
	}

	// Heuristic fallback: a bare variety name in prose.
	lower := strings.ToLower(text)
	for name, variety := range varietyNames {
		if strings.Contains(lower, name) {
			return &VarietyResult{Variety: variety, Confidence: heuristicLowConfidence}
		}
	}
	return nil
}

func parseVariety(s string) Variety {
	if v, ok := varietyNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return VarietyUnknown
}

// --- shared helpers ---

func parseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return SeverityNone
	case "low", "mild":
		return SeverityLow
	case "medium", "moderate":
		return SeverityMedium
	case "high", "severe":
		return SeverityHigh
	default:
		return ""
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
