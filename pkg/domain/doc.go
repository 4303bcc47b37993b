/*
Package domain contains the core models of a summarize trial.

It defines the entities of the sequential-unlock state machine: the question
specifications supplied by the host runner, the progression state owned by a
trial's controller, and the result handed back when the trial finishes. The
package is kept pure and free of I/O so that every front-end (HTML, JSON,
terminal) renders the same state.

# Key Entities

  - QuestionSpec / TrialConfig: what the host runner asks us to present.
  - TrialState / QuestionState: the progression snapshot (which position is enabled,
    what each status and result region shows, which responses were recorded).
  - ResponseRecord / TrialResult: the payload handed to the host runner.
  - TrialDiff: the delta between two snapshots, streamed to live clients.
*/
package domain
