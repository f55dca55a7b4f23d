// Package indexer talks to newznab-style indexer endpoints: a capability
// probe that validates the API before searches are trusted, and a free-text
// search that parses the feed response into candidates.
//
// Capability probe results are memoized for a short TTL so repeated
// connection tests and scheduler passes do not hammer the caps endpoint.
// Search failures are returned as errors for the orchestrator to log and
// degrade into empty result sets; nothing here panics or retries.
package indexer
