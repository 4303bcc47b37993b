package http

import (
	"html/template"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/markup"
	"github.com/aretw0/summarize/pkg/scoring"
)

// questionView is the template model of one question block.
type questionView struct {
	domain.QuestionIDs
	Position    int
	Prompt      template.HTML
	Placeholder string
	Rows        int
	Columns     int
	Required    bool
	Enabled     bool
	Active      bool
	Obfuscated  bool
	Message     string
	MessageKind domain.MessageKind
	Draft       string
	Ratings     []scoring.Rating
	Payload     string
	ScoreError  string
}

// trialView is the template model of the trial form.
type trialView struct {
	TrialID       string
	FormID        string
	FinishID      string
	Action        string
	EventsURL     string
	Preamble      template.HTML
	Questions     []questionView
	ButtonLabel   string
	FinishEnabled bool
	Autocomplete  string
}

func newTrialView(s *domain.TrialState, base string) trialView {
	v := trialView{
		TrialID:       s.TrialID,
		FormID:        domain.FormID,
		FinishID:      domain.FinishID,
		Action:        base + "/trials/" + s.TrialID,
		EventsURL:     base + "/trials/" + s.TrialID + "/events",
		Preamble:      markup.HTML(s.Config.Preamble),
		ButtonLabel:   s.Config.ButtonLabel,
		FinishEnabled: s.FinishEnabled,
		Autocomplete:  "off",
	}
	if s.Config.Autocomplete {
		v.Autocomplete = "on"
	}

	v.Questions = make([]questionView, len(s.Questions))
	for i, q := range s.Questions {
		qv := questionView{
			QuestionIDs: q.IDs(),
			Position:    q.Position,
			Prompt:      markup.HTML(q.Spec.Prompt),
			Placeholder: q.Spec.Placeholder,
			Rows:        q.Spec.Rows,
			Columns:     q.Spec.Columns,
			Required:    q.Spec.Required,
			Enabled:     q.Enabled(),
			Active:      q.Active,
			Obfuscated:  q.Obfuscated,
			Message:     q.Message,
			MessageKind: q.MessageKind,
			Draft:       q.Draft,
			ScoreError:  q.ScoreError,
		}
		if len(q.Score) > 0 {
			qv.Ratings, _ = scoring.Ratings(q.Score)
			qv.Payload = scoring.Pretty(q.Score)
		}
		v.Questions[i] = qv
	}
	return v
}
