package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/summarize/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a trial in display order.
// It applies semantic styling:
// - Render and Finish: ((Circle))
// - Question: [/Parallelogram/]
// Answered positions and the enabled one are styled as an overlay.
func GenerateMermaid(s *domain.TrialState) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    render((\"render\"))\n")

	prev := "render"
	for _, q := range s.Questions {
		id := fmt.Sprintf("p%d", q.Position)
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", id, label(q)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		prev = id
	}
	sb.WriteString(fmt.Sprintf("    finish((\"%s\"))\n", escape(s.Config.ButtonLabel)))
	sb.WriteString(fmt.Sprintf("    %s --> finish\n", prev))

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	for _, q := range s.Questions {
		switch {
		case q.Status == domain.StatusAnswered:
			sb.WriteString(fmt.Sprintf("    class p%d answered;\n", q.Position))
		case q.Status == domain.StatusEnabled || q.Status == domain.StatusScoring:
			sb.WriteString(fmt.Sprintf("    class p%d current;\n", q.Position))
		}
	}
	if s.FinishEnabled && !s.Finished {
		sb.WriteString("    class finish current;\n")
	}

	return sb.String()
}

func label(q domain.QuestionState) string {
	name := q.Spec.Name
	if name == "" {
		name = fmt.Sprintf("question %d", q.Index)
	}
	return fmt.Sprintf("%d. %s", q.Position+1, escape(name))
}

// escape replaces double quotes, which end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
