package domain

// ResponseRecord is a single recorded answer. It is appended once and never changed.
type ResponseRecord struct {
	Name     string `json:"name"`
	Response string `json:"response"`
}

// TrialResult is the payload handed to the host runner when the trial finishes.
type TrialResult struct {
	TrialID string `json:"trial_id,omitempty"`
	// RT is the elapsed time in milliseconds from render to final submission.
	RT       int64            `json:"rt"`
	Response []ResponseRecord `json:"response"`
}
