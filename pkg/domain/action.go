package domain

import "encoding/json"

// ActionRequest is an instruction for a front end that is not a web page,
// such as the terminal runner or a headless JSON-lines host.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Standard Action Types
const (
	// ActionRenderContent requests the host to display rich text.
	// Payload: string (Markdown)
	ActionRenderContent = "RENDER_CONTENT"

	// ActionShowStatus updates the status region of a question.
	// Payload: StatusMessage
	ActionShowStatus = "SHOW_STATUS"

	// ActionShowResult fills the result region of a question.
	// Payload: ResultMessage
	ActionShowResult = "SHOW_RESULT"

	// ActionRequestInput requests the host to collect input from the user.
	// Payload: InputRequest
	ActionRequestInput = "REQUEST_INPUT"
)

// InputType defines the kind of input requested.
type InputType string

const (
	InputText    InputType = "text"
	InputConfirm InputType = "confirm"
)

// InputRequest describes the input needed next.
type InputRequest struct {
	Type        InputType `json:"type"`
	Position    int       `json:"position"`
	Name        string    `json:"name,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	// Label is the text of the confirm control.
	Label string `json:"label,omitempty"`
}

// StatusMessage is the content of a status region.
type StatusMessage struct {
	Position int         `json:"position"`
	Text     string      `json:"text"`
	Kind     MessageKind `json:"kind"`
}

// ResultMessage is the content of a result region.
type ResultMessage struct {
	Position int             `json:"position"`
	Score    json.RawMessage `json:"score,omitempty"`
	Error    string          `json:"error,omitempty"`
}
