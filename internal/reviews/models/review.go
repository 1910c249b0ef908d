// Package models holds the review record.
package models

import (
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// Review anchors a peer review to a paper by its content hash. Validation
// is a one-way flag set by the module authority.
type Review struct {
	ID          uint64             `json:"id"`
	PaperID     uint64             `json:"paper_id"`
	Reviewer    domain.Principal   `json:"reviewer"`
	ContentHash domain.ContentHash `json:"content_hash"`
	SubmittedAt uint64             `json:"submitted_at"`
	Validated   bool               `json:"validated"`
}

// NewReview validates and builds a review record at the given block height.
func NewReview(paperID uint64, reviewer domain.Principal, contentHash domain.ContentHash, height uint64) (*Review, error) {
	if err := contentHash.Validate(); err != nil {
		return nil, err
	}
	return &Review{
		PaperID:     paperID,
		Reviewer:    reviewer,
		ContentHash: contentHash,
		SubmittedAt: height,
	}, nil
}

// CanValidate rejects re-validation.
func (r *Review) CanValidate() error {
	if r.Validated {
		return dErrors.New(dErrors.CodeConflict, "review already validated")
	}
	return nil
}

// ApplyValidate marks the review validated. Call CanValidate first.
func (r *Review) ApplyValidate() {
	r.Validated = true
}

// Clone returns a deep copy so store reads never alias store state.
func (r *Review) Clone() *Review {
	c := *r
	return &c
}
