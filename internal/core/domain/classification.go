package domain

// Outcome is the terminal state of the decision policy for one document.
type Outcome string

const (
	OutcomeAssigned Outcome = "assigned"
	OutcomeAbstain  Outcome = "abstain"
)

// ClassifyRequest carries one document's extracted text into the engine.
// LanguageHint may be empty, in which case the language identifier runs.
type ClassifyRequest struct {
	TenantID     string `json:"tenant_id"`
	DocumentID   string `json:"document_id,omitempty"`
	Text         string `json:"text"`
	LanguageHint string `json:"language_hint,omitempty"`
}

// CategoryScore is one candidate category with its bounded similarity
// score and the document keywords that matched its weight map.
type CategoryScore struct {
	Category Category `json:"category"`
	Score    float64  `json:"score"`
	Matched  []string `json:"matched,omitempty"`
}

// ClassificationResult is produced fresh on every call and never cached
// across documents, because weights may change between calls.
type ClassificationResult struct {
	Language string          `json:"language"`
	Keywords []Keyword       `json:"keywords"`
	Scores   []CategoryScore `json:"scores"`
	Outcome  Outcome         `json:"outcome"`
	// Assigned is set only when Outcome == OutcomeAssigned.
	Assigned *CategoryScore `json:"assigned,omitempty"`
}

// FeedbackEvent is a confirmation from the review flow: the engine's
// original prediction with its confidence and the human-confirmed true
// category. Secondary categories are the document's other tags.
type FeedbackEvent struct {
	TenantID             string   `json:"tenant_id"`
	DocumentID           string   `json:"document_id"`
	Language             string   `json:"language"`
	Keywords             []string `json:"keywords"`
	PredictedCategoryID  string   `json:"predicted_category_id,omitempty"`
	PredictedConfidence  float64  `json:"predicted_confidence"`
	TrueCategoryID       string   `json:"true_category_id"`
	SecondaryCategoryIDs []string `json:"secondary_category_ids,omitempty"`
}
