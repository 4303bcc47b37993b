package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func twoQuestionState() *TrialState {
	return &TrialState{
		TrialID: "trial-1",
		Order:   []int{0, 1},
		Questions: []QuestionState{
			{Position: 0, Index: 0, Status: StatusEnabled, Active: true, Message: MessagePrompt},
			{Position: 1, Index: 1, Status: StatusLocked, Obfuscated: true, Message: MessagePrompt},
		},
	}
}

func TestDiff(t *testing.T) {
	base := twoQuestionState()

	recorded := base.Snapshot()
	recorded.Questions[0].Status = StatusScoring
	recorded.Questions[0].Message = MessageRecorded
	recorded.Responses = []ResponseRecord{{Name: "q1", Response: "an answer"}}

	advanced := recorded.Snapshot()
	advanced.Questions[0].Status = StatusAnswered
	advanced.Questions[0].Active = false
	advanced.Questions[0].Score = json.RawMessage(`{"Wording":"Good"}`)
	advanced.Questions[1].Status = StatusEnabled
	advanced.Questions[1].Active = true
	advanced.Questions[1].Obfuscated = false
	advanced.Current = 1

	tests := []struct {
		name          string
		old           *TrialState
		new           *TrialState
		wantNil       bool
		wantQuestions []int
		wantResponses []ResponseRecord
		wantCurrent   *int
	}{
		{
			name:          "Initial Load (Old is Nil)",
			old:           nil,
			new:           base,
			wantQuestions: []int{0, 1},
			wantCurrent:   &[]int{0}[0],
		},
		{
			name:    "No Changes",
			old:     base,
			new:     base.Snapshot(),
			wantNil: true,
		},
		{
			name:          "Response Recorded",
			old:           base,
			new:           recorded,
			wantQuestions: []int{0},
			wantResponses: []ResponseRecord{{Name: "q1", Response: "an answer"}},
		},
		{
			name:          "Advance To Next Position",
			old:           recorded,
			new:           advanced,
			wantQuestions: []int{0, 1},
			wantCurrent:   &[]int{1}[0],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}

			if got.TrialID != "trial-1" {
				t.Errorf("Diff().TrialID = %v, want trial-1", got.TrialID)
			}

			var positions []int
			for _, q := range got.Questions {
				positions = append(positions, q.Position)
			}
			if !reflect.DeepEqual(positions, tt.wantQuestions) {
				t.Errorf("Diff().Questions positions = %v, want %v", positions, tt.wantQuestions)
			}
			if !reflect.DeepEqual(got.Responses, tt.wantResponses) {
				t.Errorf("Diff().Responses = %v, want %v", got.Responses, tt.wantResponses)
			}
			if !equalPtr(got.Current, tt.wantCurrent) {
				t.Errorf("Diff().Current = %v, want %v", got.Current, tt.wantCurrent)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		old := twoQuestionState()
		next := old.Snapshot()
		next.Questions[1].Message = "changed"

		diff := Diff(old, next)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		for _, key := range []string{`"current"`, `"responses"`, `"finished"`} {
			if strings.Contains(string(bytes), key) {
				t.Errorf("JSON should not contain %s, got: %s", key, string(bytes))
			}
		}
	})

	t.Run("Finish Flag", func(t *testing.T) {
		old := twoQuestionState()
		next := old.Snapshot()
		next.Finished = true

		bytes, _ := json.Marshal(Diff(old, next))
		if !strings.Contains(string(bytes), `"finished":true`) {
			t.Errorf("JSON should contain finished flag, got: %s", string(bytes))
		}
	})
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := twoQuestionState()
	s.Questions[0].Score = json.RawMessage(`{"a":1}`)

	cp := s.Snapshot()
	cp.Questions[0].Status = StatusAnswered
	cp.Questions[0].Score[2] = 'b'
	cp.Order[0] = 9

	if s.Questions[0].Status != StatusEnabled {
		t.Error("Snapshot shares question slice with source")
	}
	if string(s.Questions[0].Score) != `{"a":1}` {
		t.Error("Snapshot shares score bytes with source")
	}
	if s.Order[0] != 0 {
		t.Error("Snapshot shares order slice with source")
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
