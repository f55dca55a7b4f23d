// Package scheduler drives automated release acquisition for scheduled
// searches.
//
// Two periodic loops coordinate only through the store: the tick loop runs
// due pending/failed items through the single-item search procedure, and the
// poll loop reconciles waiting-download items (and manual dispatches) against
// downloader history by dedup tag. Loop intervals are clamped to at least a
// minute. A schedule's status, retry timer, and last error are mutated
// exclusively here; no loop iteration failure stops the loops.
package scheduler
