/*
Package ports defines the driven ports (interfaces) of the summarize engine.

These interfaces decouple the trial state machine from the collaborators that
live outside of it, so the same controller runs behind the HTTP adapter, the
terminal runner and the tests.

# Key Interfaces

  - Scorer: Sends a single response to the remote scoring service.
  - HostRunner: Receives the finished-trial payload, exactly once per trial.
  - Shuffler: Permutes question indices when randomization is requested.
*/
package ports
