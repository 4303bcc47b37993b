package domain

const (
	// DefaultRows is the input height used when a question does not set one.
	DefaultRows = 1
	// DefaultColumns is the input width used when a question does not set one.
	DefaultColumns = 40
	// DefaultButtonLabel is the label of the finish control.
	DefaultButtonLabel = "Continue"
)

// QuestionSpec describes a single free-text question.
// It is immutable once the trial starts.
type QuestionSpec struct {
	// Prompt is rich text (HTML or Markdown) shown above the input.
	Prompt      string `json:"prompt" yaml:"prompt" mapstructure:"prompt" validate:"required"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	Rows        int    `json:"rows,omitempty" yaml:"rows,omitempty" mapstructure:"rows" validate:"gte=0"`
	Columns     int    `json:"columns,omitempty" yaml:"columns,omitempty" mapstructure:"columns" validate:"gte=0"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	// Name is the key of the answer in the response list.
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// WithDefaults returns a copy with rows and columns filled in when absent.
func (q QuestionSpec) WithDefaults() QuestionSpec {
	if q.Rows <= 0 {
		q.Rows = DefaultRows
	}
	if q.Columns <= 0 {
		q.Columns = DefaultColumns
	}
	return q
}

// ScoringPrompt is the context/question pair sent to the scoring service
// alongside every response.
type ScoringPrompt struct {
	Context  string `json:"context" yaml:"context" mapstructure:"context"`
	Question string `json:"question" yaml:"question" mapstructure:"question"`
}

// IsZero reports whether neither field is set.
func (p ScoringPrompt) IsZero() bool {
	return p.Context == "" && p.Question == ""
}

// TrialConfig is created by the host runner and consumed once.
type TrialConfig struct {
	Questions              []QuestionSpec `json:"questions" yaml:"questions" mapstructure:"questions" validate:"required,min=1,dive"`
	RandomizeQuestionOrder bool           `json:"randomize_question_order,omitempty" yaml:"randomize_question_order,omitempty" mapstructure:"randomize_question_order"`
	Preamble               string         `json:"preamble,omitempty" yaml:"preamble,omitempty" mapstructure:"preamble"`
	ButtonLabel            string         `json:"button_label,omitempty" yaml:"button_label,omitempty" mapstructure:"button_label"`
	Autocomplete           bool           `json:"autocomplete,omitempty" yaml:"autocomplete,omitempty" mapstructure:"autocomplete"`

	// Scoring overrides the process-wide scoring prompt for this trial only.
	Scoring *ScoringPrompt `json:"scoring,omitempty" yaml:"scoring,omitempty" mapstructure:"scoring"`
}

// WithDefaults returns a copy of the config with question and label defaults applied.
// The question slice is copied so the caller's config is never touched.
func (c TrialConfig) WithDefaults() TrialConfig {
	questions := make([]QuestionSpec, len(c.Questions))
	for i, q := range c.Questions {
		questions[i] = q.WithDefaults()
	}
	c.Questions = questions
	if c.ButtonLabel == "" {
		c.ButtonLabel = DefaultButtonLabel
	}
	return c
}
