/*
Package session implements the registry of live trials.

Trials live in memory only. The registry hands out controllers by ID, keeps
reference counts of in-flight operations and evicts trials that stayed idle
longer than the configured TTL.
*/
package session
