// Package classify maps free-text release titles to canonical session types
// using an ordered list of pattern rules.
//
// Rule order is load-bearing: the categories overlap (a title carrying both
// "sprint" and "qualifying" must resolve to sprint-qualifying before the
// plain sprint rule fires, and "grand prix" counts as a race only when no
// other session token matched earlier). Do not reorder the rules for
// cleanliness.
package classify
