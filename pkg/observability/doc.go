/*
Package observability provides tools for monitoring the summarize engine.

It includes Prometheus metrics driven by lifecycle hooks and structured log hooks
that audit every transition of a trial (start, rejection, recording, scoring, finish).
*/
package observability
