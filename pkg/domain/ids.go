package domain

import "strconv"

// Identifiers of the trial form.
const (
	FormID   = "summarize-text-form"
	FinishID = "summarize-text-next"
)

// QuestionIDs are the stable element identifiers of one question block.
// They derive from the original question index, so they do not move when
// the display order is shuffled.
type QuestionIDs struct {
	Block    string `json:"block"`
	Input    string `json:"input"`
	Submit   string `json:"submit"`
	Response string `json:"response"`
	Result   string `json:"result"`
}

// IDsFor returns the identifiers of the question at original index i.
func IDsFor(i int) QuestionIDs {
	n := strconv.Itoa(i)
	return QuestionIDs{
		Block:    "summarize-question-" + n,
		Input:    "input-" + n,
		Submit:   "submit-" + n,
		Response: "response-" + n,
		Result:   "api-result-" + n,
	}
}

// IDs returns the identifiers of q.
func (q QuestionState) IDs() QuestionIDs {
	return IDsFor(q.Index)
}
