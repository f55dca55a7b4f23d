// Package media defines the domain model shared across the acquisition
// pipeline: seasons, rounds, events, and the ephemeral release candidates
// produced by indexer searches.
//
// Candidates carry no persistent identity; within a search run they are
// deduplicated by NZB URL or, when that is missing, by the (indexer,
// lowercased title) pair exposed through DedupKey.
package media
