// Package schema decodes and validates trial configurations.
//
// A trial configuration arrives as a YAML or JSON document, or as the
// parameter map of an experiment runner:
//
//	params := map[string]any{
//	    "questions": []any{
//	        map[string]any{"prompt": "Summarize the text", "name": "q1", "rows": "4"},
//	    },
//	    "randomize_question_order": "true",
//	}
//
//	cfg, err := schema.DecodeTrialConfig(params)
//	if err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each field failure
//	    }
//	}
//
// Scalars are weakly typed, so "4" decodes into an int field. Every failure is
// reported as a *ValidationError, several failures as an *AggregateError.
package schema
