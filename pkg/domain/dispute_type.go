package domain

import dErrors "scholarchain/pkg/domain-errors"

// DisputeType tags the nature of a raised dispute.
type DisputeType string

// Supported dispute types.
const (
	DisputePlagiarism    DisputeType = "plagiarism"
	DisputeFalseData     DisputeType = "false_data"
	DisputeAuthorship    DisputeType = "authorship"
	DisputeReviewMisuse  DisputeType = "review_misuse"
)

var validDisputeTypes = map[DisputeType]bool{
	DisputePlagiarism:   true,
	DisputeFalseData:    true,
	DisputeAuthorship:   true,
	DisputeReviewMisuse: true,
}

// ParseDisputeType constructs a DisputeType from external input.
func ParseDisputeType(s string) (DisputeType, error) {
	t := DisputeType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid dispute type")
	}
	return t, nil
}

// IsValid checks if the dispute type is one of the supported tags.
func (t DisputeType) IsValid() bool {
	return validDisputeTypes[t]
}

func (t DisputeType) String() string { return string(t) }
