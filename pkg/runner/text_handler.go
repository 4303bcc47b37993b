package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/summarize/pkg/domain"
	"golang.org/x/term"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines until EOF so that Input can be abandoned on cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, actions []domain.ActionRequest) (bool, error) {
	for _, act := range actions {
		switch p := act.Payload.(type) {
		case string:
			if act.Type == domain.ActionRenderContent {
				h.writeContent(p)
			}
		case domain.StatusMessage:
			if p.Text != "" {
				fmt.Fprintln(h.Writer, statusPrefix(p.Kind)+p.Text)
			}
		case domain.ResultMessage:
			if p.Error != "" {
				fmt.Fprintln(h.Writer, statusPrefix(domain.MessageError)+p.Error)
			} else if len(p.Score) > 0 {
				h.writeContent(ResultMarkdown(p.Score))
			}
		case domain.InputRequest:
			if p.Type == domain.InputConfirm {
				fmt.Fprintf(h.Writer, "\nPress Enter to %s.\n", strings.ToLower(p.Label))
			} else if p.Placeholder != "" {
				fmt.Fprintf(h.Writer, "(%s)\n", p.Placeholder)
			}
		}
	}
	return needsInput(actions), nil
}

func (h *TextHandler) writeContent(md string) {
	output := md
	if h.Renderer != nil {
		if rendered, err := h.Renderer(md); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(output))
}

func statusPrefix(kind domain.MessageKind) string {
	switch kind {
	case domain.MessageError:
		return "[!] "
	case domain.MessageSuccess:
		return "[ok] "
	default:
		return ""
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}
