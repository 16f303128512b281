package domain

import "github.com/google/uuid"

type OptionResult struct {
	OptionID   uuid.UUID `json:"option_id"`
	Text       string    `json:"text"`
	Order      int       `json:"order"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}

type SurveyResults struct {
	Survey  *Survey        `json:"survey"`
	Options []OptionResult `json:"options"`
	Total   int64          `json:"total"`
}

// NewSurveyResults sums the per-option counts and fills in each option's share
// of the total. Option order is kept as given.
func NewSurveyResults(survey *Survey, options []OptionResult) *SurveyResults {
	var total int64
	for _, opt := range options {
		total += opt.VoteCount
	}

	for i := range options {
		options[i].Percentage = 0
		if total > 0 {
			options[i].Percentage = (float64(options[i].VoteCount) / float64(total)) * 100
		}
	}

	return &SurveyResults{
		Survey:  survey,
		Options: options,
		Total:   total,
	}
}
