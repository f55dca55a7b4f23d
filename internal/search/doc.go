// Package search implements the acquisition pipeline's query side: variant
// generation for free-text queries, round-driven query construction, fuzzy
// title-to-round matching, the orchestrator that fans queries out across
// enabled indexers, and the per-round result cache.
//
// The orchestrator owns the accumulation contract shared by both search
// modes: candidates are deduplicated by NZB URL or (indexer, title) pair,
// classified, filtered against the session allow-list, and sorted freshest
// and largest first. Indexer failures degrade to empty result sets; they are
// logged but never propagate past this package.
package search
