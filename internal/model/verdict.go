package model

// Label is the terminal three-way verdict
type Label string

const (
	LabelSupported     Label = "Supported"
	LabelRefuted       Label = "Refuted"
	LabelNotEnoughInfo Label = "Not Enough Info"
)

// Labels enumerates the canonical labels in parse-scan order
var Labels = []Label{LabelSupported, LabelRefuted, LabelNotEnoughInfo}

// Verdict is the final decision with its evidence trail. Immutable once
// produced.
type Verdict struct {
	Label      Label                `json:"label"`
	Confidence float64              `json:"confidence"`
	Reason     string               `json:"reason,omitempty"`
	Evidence   []ClassifiedEvidence `json:"evidence"`
}

// EntityCandidate is one ranked KB resolution of a surface form
type EntityCandidate struct {
	Surface string  `json:"surface_form"`
	URI     string  `json:"uri"`
	KB      string  `json:"kb"` // "dbpedia" | "wikidata"
	Score   float64 `json:"score"`
}

// EntityLinking carries the candidate sets for both sides of the triple
type EntityLinking struct {
	SubjectCandidates []EntityCandidate `json:"subject_candidates"`
	ObjectCandidates  []EntityCandidate `json:"object_candidates"`
}

// SearchResult is one organic web search hit
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// VerifyResult is the boundary response for a single claim
type VerifyResult struct {
	Claim         string               `json:"claim"`
	Triple        *Triple              `json:"triple"`
	Evidence      []ClassifiedEvidence `json:"evidence"`
	AllTopPaths   []Path               `json:"all_top_evidence_paths,omitempty"`
	Label         Label                `json:"label"`
	Confidence    float64              `json:"confidence"`
	Reason        string               `json:"reason"`
	EntityLinking EntityLinking        `json:"entity_linking"`
}
