// Package analysis implements the classification pipeline and the response
// interpreter for lanzones fruit and leaf photographs: fingerprint, cache
// probe, detection, category-routed analysis, best-effort variety
// identification, and the layered interpretation that turns free-form model
// text into a record whose invariants always hold.
package analysis

import (
	"fmt"
	"time"
)

// ItemCategory is decided once during the detection step.
type ItemCategory string

const (
	CategoryFruit     ItemCategory = "lanzones_fruit"
	CategoryLeaf      ItemCategory = "lanzones_leaf"
	CategoryUnrelated ItemCategory = "unrelated"
)

// Severity of a detected condition. SeverityNone if and only if no disease
// was detected.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Variety of lanzones, identified best-effort for fruit photos only.
type Variety string

const (
	VarietyLongkong Variety = "longkong"
	VarietyPaete    Variety = "paete"
	VarietyDuco     Variety = "duco"
	VarietyJolo     Variety = "jolo"
	VarietyUnknown  Variety = "unknown"
)

// UnidentifiedDisease is substituted when disease is flagged but no usable
// name could be extracted from the model text.
const UnidentifiedDisease = "Unidentified Disease"

// VarietyResult is the optional secondary identification attached to fruit
// outcomes. Its absence is never an error.
type VarietyResult struct {
	Variety         Variety  `json:"variety"`
	Confidence      float64  `json:"confidence"`
	Characteristics []string `json:"characteristics,omitempty"`
	Description     string   `json:"description,omitempty"`
}

// Outcome is the resolved result of analyzing one image. Immutable after
// construction; a cache hit reconstructs it verbatim.
type Outcome struct {
	ID              string         `json:"id"`
	ItemCategory    ItemCategory   `json:"itemCategory"`
	DiseaseDetected bool           `json:"diseaseDetected"`
	DiseaseName     string         `json:"diseaseName,omitempty"`
	Confidence      float64        `json:"confidence"`
	Symptoms        []string       `json:"symptoms"`
	Recommendations []string       `json:"recommendations"`
	Severity        Severity       `json:"severity"`
	Variety         *VarietyResult `json:"variety,omitempty"`
	RawModelText    string         `json:"rawModelText,omitempty"`
	AnalyzedAt      time.Time      `json:"analyzedAt"`
}

// Validate checks the outcome invariants. Every outcome the pipeline
// returns, fresh or cached, must pass.
func (o *Outcome) Validate() error {
	if o.DiseaseDetected && o.DiseaseName == "" {
		return fmt.Errorf("disease detected but no disease name")
	}
	if !o.DiseaseDetected && o.DiseaseName != "" {
		return fmt.Errorf("disease name %q present without detected disease", o.DiseaseName)
	}
	if (o.Severity == SeverityNone) != !o.DiseaseDetected {
		return fmt.Errorf("severity %q inconsistent with diseaseDetected=%v", o.Severity, o.DiseaseDetected)
	}
	if o.Confidence < 0 || o.Confidence > 1 {
		return fmt.Errorf("confidence %v out of [0,1]", o.Confidence)
	}
	if o.Variety != nil && o.ItemCategory != CategoryFruit {
		return fmt.Errorf("variety result on %q outcome", o.ItemCategory)
	}
	return nil
}
