package domain

import (
	"time"

	"github.com/google/uuid"
)

// Character is the uploaded character image belonging to an account.
// There is at most one character per account.
type Character struct {
	// ID is the unique identifier for the character.
	ID string `json:"id"`

	// UserID is the owning account's ID (one-to-one).
	UserID string `json:"user_id"`

	// ImageURL is the publicly reachable URL of the character image.
	ImageURL string `json:"image_url"`

	// CreatedAt is the timestamp when the character was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the image was last replaced.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCharacter creates a new character for the given account.
func NewCharacter(userID, imageURL string) *Character {
	now := time.Now().UTC()
	return &Character{
		ID:        uuid.New().String(),
		UserID:    userID,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateImage replaces the character image.
func (c *Character) UpdateImage(imageURL string) {
	c.ImageURL = imageURL
	c.UpdatedAt = time.Now().UTC()
}

// AnalysisStatus is the outcome of one image analysis run.
type AnalysisStatus string

const (
	// AnalysisSuccess means the external service returned a usable result.
	AnalysisSuccess AnalysisStatus = "SUCCESS"

	// AnalysisError means the run failed; ErrorMessage carries the cause.
	AnalysisError AnalysisStatus = "ERROR"
)

// AnalysisRecord is one entry in the character analysis history.
// Every analysis attempt is recorded, successful or not.
type AnalysisRecord struct {
	// ID is the unique identifier for the record.
	ID string `json:"id"`

	// CharacterID references the analyzed character.
	CharacterID string `json:"character_id"`

	// UserID references the owning account.
	UserID string `json:"user_id"`

	// ImageURL is the URL that was submitted for analysis.
	ImageURL string `json:"image_url"`

	// Analysis is the structured result; nil when Status is ERROR.
	Analysis *CharacterAnalysis `json:"analysis,omitempty"`

	// Status records whether the run succeeded.
	Status AnalysisStatus `json:"status"`

	// ErrorMessage carries the failure cause when Status is ERROR.
	ErrorMessage string `json:"error_message,omitempty"`

	// RawResponse is the unparsed provider response, kept for debugging.
	RawResponse string `json:"-"`

	// ProcessedAt is the timestamp when the run finished.
	ProcessedAt time.Time `json:"processed_at"`
}

// NewAnalysisRecord creates a history record for an analysis run.
func NewAnalysisRecord(characterID, userID, imageURL string) *AnalysisRecord {
	return &AnalysisRecord{
		ID:          uuid.New().String(),
		CharacterID: characterID,
		UserID:      userID,
		ImageURL:    imageURL,
		Status:      AnalysisSuccess,
		ProcessedAt: time.Now().UTC(),
	}
}

// MarkFailed records a failed run.
func (r *AnalysisRecord) MarkFailed(cause string) {
	r.Status = AnalysisError
	r.ErrorMessage = cause
	r.Analysis = nil
	r.ProcessedAt = time.Now().UTC()
}
