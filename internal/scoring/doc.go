// Package scoring assigns quality scores and human-readable reasons to
// release candidates given the effective search preferences.
//
// Score is a pure function of candidate plus settings: identical input always
// produces the same score, so results are comparable across indexers and
// stable across runs. Resolutions outside the configured range are penalized
// hard enough to disqualify; size and seeder contributions use diminishing
// returns so a huge release cannot buy its way past a resolution violation.
package scoring
