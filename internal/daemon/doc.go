// Package daemon runs the long-lived racecarrd process: it enforces
// single-instance execution with a lock file, recovers interrupted work at
// startup, and hosts the scheduler loops alongside the HTTP API.
package daemon
