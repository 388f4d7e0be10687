package analysis

// Vocabulary used by the heuristic interpretation path. Order matters where
// noted: healthy phrases are checked before disease keywords and always win.

// healthyPhrases short-circuit to "no disease" even when disease-sounding
// words also appear later in the text.
var healthyPhrases = []string{
	"no signs of disease",
	"no sign of disease",
	"no disease",
	"disease-free",
	"disease free",
	"appears healthy",
	"looks healthy",
	"is healthy",
	"healthy fruit",
	"healthy leaf",
	"no visible symptoms",
}

// diseaseKeywords indicate some condition is present.
var diseaseKeywords = []string{
	"disease",
	"infection",
	"infected",
	"infestation",
	"rot",
	"lesion",
	"fungus",
	"fungal",
	"blight",
	"canker",
	"mold",
	"mould",
	"wilt",
	"necrosis",
	"spots",
}

// diseaseCatalog maps known lanzones conditions to their canonical names.
// Matching is done case-insensitively against the model text.
var diseaseCatalog = []struct {
	match string
	name  string
}{
	{"anthracnose", "Anthracnose"},
	{"fruit rot", "Fruit Rot"},
	{"sooty mold", "Sooty Mold"},
	{"sooty mould", "Sooty Mold"},
	{"leaf spot", "Leaf Spot"},
	{"leaf blight", "Leaf Blight"},
	{"stem canker", "Stem Canker"},
	{"pink disease", "Pink Disease"},
	{"root rot", "Root Rot"},
	{"scale insect", "Scale Infestation"},
	{"scale infestation", "Scale Infestation"},
}

// Confidence qualifiers for heuristic parsing.
var (
	highConfidenceWords = []string{"clearly", "definitely", "obvious", "certainly", "pronounced"}
	lowConfidenceWords  = []string{"possibly", "might", "may be", "perhaps", "could be", "uncertain"}
)

const (
	heuristicHighConfidence    = 0.9
	heuristicDefaultConfidence = 0.7
	heuristicLowConfidence     = 0.4
)

// symptomKeywords maps text keywords to symptom labels.
var symptomKeywords = []struct {
	match string
	label string
}{
	{"yellow", "Yellowing"},
	{"brown spot", "Brown spotting"},
	{"spot", "Spotting"},
	{"lesion", "Lesions"},
	{"wilt", "Wilting"},
	{"mold", "Mold growth"},
	{"mould", "Mold growth"},
	{"discolor", "Discoloration"},
	{"crack", "Cracking"},
	{"shrivel", "Shriveling"},
	{"black", "Blackening"},
	{"soft", "Softening"},
	{"dry", "Drying"},
}

// Severity intensity qualifiers; ambiguous text defaults to medium when a
// disease is present.
var (
	highSeverityWords = []string{"severe", "severely", "advanced", "extensive", "widespread", "heavily"}
	lowSeverityWords  = []string{"mild", "slight", "slightly", "early stage", "minor", "beginning"}
)

// varietyNames maps model-emitted variety strings to the enum.
var varietyNames = map[string]Variety{
	"longkong":  VarietyLongkong,
	"long kong": VarietyLongkong,
	"paete":     VarietyPaete,
	"duco":      VarietyDuco,
	"duku":      VarietyDuco,
	"jolo":      VarietyJolo,
}
