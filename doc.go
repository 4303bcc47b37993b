/*
Package summarize runs sequential free-text survey trials.

A trial shows a list of questions that are unlocked one at a time. The participant
explains a text in their own words; every accepted answer is recorded, sent to a
scoring service and the next question is enabled. When all questions are answered
the finish control unlocks and the ordered response list is handed to the host runner.

# Concept

The Engine owns every live trial. Each trial is a controller guarding an explicit
per-question state object, so the unlock order, the answer records and the finish
payload follow from one state machine:

	locked -> enabled -> (rejected, back to enabled) | scoring -> answered

Front ends (the HTTP adapter in pkg/adapters/http, the terminal runner in pkg/runner)
only read snapshots and forward submissions by display position.

# Key Features

  - Responses shorter than 10 characters or 4 words are rejected without side effects.
  - Scoring failures never block progression; they are shown in the result region.
  - Question order can be shuffled while identifiers and answer keys stay stable.
  - Finished trials are delivered through ports.HostRunner adapters (memory, webhook, Redis, Kafka).

# Usage

	eng := summarize.New(
		summarize.WithScorer(scoring.New("http://localhost:8000")),
		summarize.WithHost(memory.NewRecorder()),
	)

	state, err := eng.Start(ctx, domain.TrialConfig{
		Questions: []domain.QuestionSpec{{Prompt: "What is the text about?", Name: "q1"}},
	})
	if err != nil {
		log.Fatal(err)
	}

	state, err = eng.Submit(ctx, state.TrialID, 0, "It explains how rain forms over the sea.")
	if err != nil {
		log.Fatal(err)
	}

	result, err := eng.Finish(ctx, state.TrialID)
*/
package summarize
