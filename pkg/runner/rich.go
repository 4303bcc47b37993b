package runner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/markup"
	"github.com/aretw0/summarize/pkg/scoring"
)

// QuestionActions renders a question block: its prompt and status region.
func QuestionActions(q domain.QuestionState) []domain.ActionRequest {
	return []domain.ActionRequest{
		{Type: domain.ActionRenderContent, Payload: markup.Markdown(q.Spec.Prompt)},
		StatusAction(q),
	}
}

// StatusAction renders the status region of a question.
func StatusAction(q domain.QuestionState) domain.ActionRequest {
	return domain.ActionRequest{
		Type:    domain.ActionShowStatus,
		Payload: domain.StatusMessage{Position: q.Position, Text: q.Message, Kind: q.MessageKind},
	}
}

// ResultAction renders the result region of an answered question.
func ResultAction(q domain.QuestionState) domain.ActionRequest {
	return domain.ActionRequest{
		Type:    domain.ActionShowResult,
		Payload: domain.ResultMessage{Position: q.Position, Score: q.Score, Error: q.ScoreError},
	}
}

// InputAction asks for the answer to a question.
func InputAction(q domain.QuestionState) domain.ActionRequest {
	return domain.ActionRequest{
		Type: domain.ActionRequestInput,
		Payload: domain.InputRequest{
			Type:        domain.InputText,
			Position:    q.Position,
			Name:        q.Spec.Name,
			Placeholder: q.Spec.Placeholder,
		},
	}
}

// FinishAction asks for the finish confirmation.
func FinishAction(s *domain.TrialState) domain.ActionRequest {
	return domain.ActionRequest{
		Type: domain.ActionRequestInput,
		Payload: domain.InputRequest{
			Type:     domain.InputConfirm,
			Position: len(s.Questions),
			Label:    s.Config.ButtonLabel,
		},
	}
}

// ResultMarkdown formats a scoring payload. Known assessment criteria become a table,
// anything else is shown as indented JSON.
func ResultMarkdown(score json.RawMessage) string {
	if ratings, ok := scoring.Ratings(score); ok {
		var b strings.Builder
		b.WriteString("| Criterion | Rating |\n|---|---|\n")
		for _, r := range ratings {
			fmt.Fprintf(&b, "| %s | %s |\n", r.Criterion, escapeCell(r.Value))
		}
		return b.String()
	}
	return "```json\n" + scoring.Pretty(score) + "\n```\n"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
