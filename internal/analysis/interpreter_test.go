package analysis

import (
	"testing"
)

func assertInvariants(t *testing.T, p parsed) {
	t.Helper()

	if p.diseaseDetected && p.diseaseName == "" {
		t.Errorf("disease detected without a name")
	}
	if !p.diseaseDetected && p.diseaseName != "" {
		t.Errorf("disease name %q present on healthy result", p.diseaseName)
	}
	if (p.severity == SeverityNone) != !p.diseaseDetected {
		t.Errorf("severity %q inconsistent with detected=%v", p.severity, p.diseaseDetected)
	}
	if p.confidence < 0 || p.confidence > 1 {
		t.Errorf("confidence %v out of range", p.confidence)
	}
	if p.symptoms == nil || p.recommendations == nil {
		t.Errorf("lists must be non-nil after repair")
	}
}

func TestInterpretStructuredPath(t *testing.T) {
	text := `{
		"diseaseDetected": true,
		"diseaseName": "Anthracnose",
		"confidence": 0.92,
		"symptoms": ["dark sunken lesions", " brown spots "],
		"recommendations": ["remove infected fruit"],
		"severity": "high"
	}`

	p := interpret(text, CategoryFruit)

	if p.source != sourceStructured {
		t.Fatalf("expected structured path")
	}
	if !p.diseaseDetected || p.diseaseName != "Anthracnose" {
		t.Fatalf("unexpected result: %+v", p)
	}
	if p.severity != SeverityHigh {
		t.Fatalf("expected high severity, got %q", p.severity)
	}
	if p.confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %v", p.confidence)
	}
	if len(p.symptoms) != 2 || p.symptoms[1] != "brown spots" {
		t.Fatalf("symptoms not cleaned: %#v", p.symptoms)
	}
	assertInvariants(t, p)
}

func TestInterpretFencedJSON(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"diseaseDetected\": false, \"confidence\": 0.8}\n```\nHope that helps."

	p := interpret(text, CategoryLeaf)

	if p.source != sourceStructured {
		t.Fatalf("expected structured path through the fenced block")
	}
	if p.diseaseDetected {
		t.Fatalf("expected healthy result")
	}
	if p.severity != SeverityNone {
		t.Fatalf("expected severity none, got %q", p.severity)
	}
	assertInvariants(t, p)
}

func TestInterpretBraceScanInsideProse(t *testing.T) {
	text := `The model says {"diseaseDetected": true, "diseaseName": "Leaf Spot", "severity": "low"} among other things.`

	p := interpret(text, CategoryLeaf)

	if p.source != sourceStructured || p.diseaseName != "Leaf Spot" || p.severity != SeverityLow {
		t.Fatalf("unexpected result: %+v", p)
	}
	assertInvariants(t, p)
}

func TestBraceScanRespectsStrings(t *testing.T) {
	// The closing brace inside the string literal must not end the scan.
	text := `{"diseaseDetected": true, "diseaseName": "odd } name"}`

	blob, ok := braceScan(text)
	if !ok || blob != text {
		t.Fatalf("brace scan mishandled string literal: %q ok=%v", blob, ok)
	}
}

func TestInterpretNullDiseaseNameRepaired(t *testing.T) {
	text := `{"diseaseDetected": true, "diseaseName": null, "confidence": 0.75, "severity": "medium"}`

	p := interpret(text, CategoryFruit)

	if p.diseaseName != UnidentifiedDisease {
		t.Fatalf("expected sentinel name, got %q", p.diseaseName)
	}
	assertInvariants(t, p)
}

func TestInterpretHealthyPhraseOverridesDiseaseKeywords(t *testing.T) {
	// Explicit healthy phrasing wins even though "rot" appears later.
	text := `The fruit shows no signs of disease. Watch out for fruit rot during storage.`

	p := interpret(text, CategoryFruit)

	if p.source != sourceHeuristic {
		t.Fatalf("expected heuristic path for prose")
	}
	if p.diseaseDetected {
		t.Fatalf("healthy phrase must take precedence over disease keywords")
	}
	if p.diseaseName != "" || p.severity != SeverityNone {
		t.Fatalf("healthy result carries disease fields: %+v", p)
	}
	assertInvariants(t, p)
}

func TestInterpretHeuristicDiseaseProse(t *testing.T) {
	text := `This leaf is clearly infected with severe leaf blight. I can see extensive yellowing and brown spots with lesions.`

	p := interpret(text, CategoryLeaf)

	if p.source != sourceHeuristic {
		t.Fatalf("expected heuristic path")
	}
	if !p.diseaseDetected || p.diseaseName != "Leaf Blight" {
		t.Fatalf("unexpected result: %+v", p)
	}
	if p.confidence != heuristicHighConfidence {
		t.Fatalf("expected high confidence from %q qualifiers, got %v", "clearly", p.confidence)
	}
	if p.severity != SeverityHigh {
		t.Fatalf("expected high severity, got %q", p.severity)
	}

	found := false
	for _, s := range p.symptoms {
		if s == "Yellowing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Yellowing among symptoms: %#v", p.symptoms)
	}
	assertInvariants(t, p)
}

func TestInterpretHeuristicUnknownDiseaseGetsSentinel(t *testing.T) {
	text := `There might be some kind of fungal infection here but it is hard to say what.`

	p := interpret(text, CategoryFruit)

	if !p.diseaseDetected {
		t.Fatalf("expected disease detected from fungal keyword")
	}
	if p.diseaseName != UnidentifiedDisease {
		t.Fatalf("expected sentinel name, got %q", p.diseaseName)
	}
	if p.confidence != heuristicLowConfidence {
		t.Fatalf("expected low confidence from %q qualifier, got %v", "might", p.confidence)
	}
	if p.severity != SeverityMedium {
		t.Fatalf("ambiguous severity should default to medium, got %q", p.severity)
	}
	assertInvariants(t, p)
}

func TestInterpretUnrelatedNeverEmitsDisease(t *testing.T) {
	// Even if the model hallucinated disease fields for an unrelated photo.
	text := `{"diseaseDetected": true, "diseaseName": "Anthracnose", "severity": "high"}`

	p := interpret(text, CategoryUnrelated)

	if p.diseaseDetected || p.diseaseName != "" || p.severity != SeverityNone {
		t.Fatalf("unrelated category must not carry disease fields: %+v", p)
	}
	assertInvariants(t, p)
}

func TestInterpretAdversarialInputsHoldInvariants(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t  ",
		"{",
		"{{{",
		"}{",
		`{"diseaseDetected": "yes"}`,
		`{"diseaseDetected": true}`,
		`{"diseaseDetected": true, "diseaseName": ""}`,
		`{"diseaseDetected": true, "diseaseName": null, "severity": "none"}`,
		`{"diseaseDetected": false, "diseaseName": "Anthracnose", "severity": "high"}`,
		`{"diseaseDetected": true, "confidence": 17.5}`,
		`{"diseaseDetected": true, "confidence": -3}`,
		`{"unexpected": [1,2,3]}`,
		"```json\nnot json at all\n```",
		"The photo shows a wooden table with no plants.",
		"Definitely some rot on this one.",
		"no disease visible, looks great",
		`random text then {"diseaseDetected": true, "diseaseName": "Sooty Mold"} trailing`,
	}

	for _, category := range []ItemCategory{CategoryFruit, CategoryLeaf, CategoryUnrelated} {
		for _, text := range inputs {
			p := interpret(text, category)
			assertInvariants(t, p)
		}
	}
}

func TestInterpretDetection(t *testing.T) {
	cases := []struct {
		text string
		want ItemCategory
	}{
		{`{"category": "lanzones_fruit", "confidence": 0.9}`, CategoryFruit},
		{`{"category": "lanzones_leaf"}`, CategoryLeaf},
		{`{"category": "unrelated"}`, CategoryUnrelated},
		{"This appears to be lanzones fruit on a table.", CategoryFruit},
		{"I can see foliage, lanzones leaves specifically.", CategoryLeaf},
		{"A photo of a car.", CategoryUnrelated},
		{"", CategoryUnrelated},
	}

	for _, tc := range cases {
		if got := interpretDetection(tc.text); got != tc.want {
			t.Errorf("interpretDetection(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestInterpretVariety(t *testing.T) {
	structured := `{"variety": "Longkong", "confidence": 0.85, "characteristics": ["thick skin", ""], "description": " Sweet variety. "}`

	result := interpretVariety(structured)
	if result == nil {
		t.Fatalf("expected variety result")
	}
	if result.Variety != VarietyLongkong || result.Confidence != 0.85 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Characteristics) != 1 || result.Description != "Sweet variety." {
		t.Fatalf("fields not cleaned: %+v", result)
	}

	if got := interpretVariety("It looks like a paete type to me."); got == nil || got.Variety != VarietyPaete {
		t.Fatalf("expected heuristic paete match, got %+v", got)
	}

	if got := interpretVariety("no clue what this is"); got != nil {
		t.Fatalf("expected nil for unusable text, got %+v", got)
	}

	if got := interpretVariety(`{"variety": "mystery cultivar"}`); got == nil || got.Variety != VarietyUnknown {
		t.Fatalf("unmapped variety should resolve to unknown, got %+v", got)
	}
}
