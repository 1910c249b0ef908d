// Package models holds the paper record.
package models

import (
	"strings"

	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// MaxTitleLength bounds submitted titles.
const MaxTitleLength = 256

// Paper is an authorship claim anchored by a content hash. The content
// itself lives off-chain; only the hash and submission metadata are kept.
type Paper struct {
	ID          uint64             `json:"id"`
	Author      domain.Principal   `json:"author"`
	Title       string             `json:"title"`
	ContentHash domain.ContentHash `json:"content_hash"`
	SubmittedAt uint64             `json:"submitted_at"`
}

// NewPaper validates and builds a paper record at the given block height.
func NewPaper(author domain.Principal, title string, contentHash domain.ContentHash, height uint64) (*Paper, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return nil, dErrors.New(dErrors.CodeValidation, "title too long")
	}
	if err := contentHash.Validate(); err != nil {
		return nil, err
	}
	return &Paper{
		Author:      author,
		Title:       title,
		ContentHash: contentHash,
		SubmittedAt: height,
	}, nil
}

// Clone returns a deep copy so store reads never alias store state.
func (p *Paper) Clone() *Paper {
	c := *p
	return &c
}
