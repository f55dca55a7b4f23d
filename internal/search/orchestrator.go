package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"racecarr/internal/classify"
	"racecarr/internal/indexer"
	"racecarr/internal/logging"
	"racecarr/internal/media"
)

// Searcher issues a single indexer query. Implemented by indexer.Client.
type Searcher interface {
	Search(ctx context.Context, endpoint indexer.Endpoint, query string, limit int) ([]media.Candidate, error)
}

// Orchestrator fans query variants out across enabled indexers and owns the
// shared accumulation, dedup, and ordering contract.
type Orchestrator struct {
	searcher Searcher
	logger   *slog.Logger
	limit    int
	now      func() time.Time
}

// NewOrchestrator constructs an orchestrator. limit is the per-indexer unique
// result cap applied per search run.
func NewOrchestrator(searcher Searcher, logger *slog.Logger, limit int) *Orchestrator {
	if limit <= 0 {
		limit = 50
	}
	return &Orchestrator{
		searcher: searcher,
		logger:   logging.NewComponentLogger(logger, "search"),
		limit:    limit,
		now:      time.Now,
	}
}

type accumulator struct {
	mu         sync.Mutex
	seen       map[string]struct{}
	candidates []media.Candidate
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]struct{})}
}

// add records a candidate unless its dedup key was already seen. The keep
// callback runs under the lock only after the candidate is known to be new;
// returning false discards it without releasing the dedup slot, so an
// allow-list rejection is not rediscovered via another variant.
func (a *accumulator) add(candidate media.Candidate, keep func(*media.Candidate) bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := candidate.DedupKey()
	if _, ok := a.seen[key]; ok {
		return false
	}
	a.seen[key] = struct{}{}
	if keep != nil && !keep(&candidate) {
		return true
	}
	a.candidates = append(a.candidates, candidate)
	return true
}

func (a *accumulator) results() []media.Candidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]media.Candidate, len(a.candidates))
	copy(out, a.candidates)
	return out
}

// Search runs an ad-hoc free-text search across the given indexers.
// When types is empty the allow-list is inferred from classifying the query
// itself; callers passing the full default allow-list verbatim are narrowed
// the same way.
func (o *Orchestrator) Search(ctx context.Context, endpoints []indexer.Endpoint, query string, limit int, types []classify.SessionType) []media.Candidate {
	if limit <= 0 || limit > o.limit {
		limit = o.limit
	}
	variants := Variants(query)
	allow := resolveAllowlist(query, types)

	acc := newAccumulator()
	group, groupCtx := errgroup.WithContext(ctx)
	for _, endpoint := range endpoints {
		group.Go(func() error {
			unique := 0
			for _, variant := range variants {
				if unique >= limit {
					break
				}
				found, err := o.searcher.Search(groupCtx, endpoint, variant, limit)
				if err != nil {
					o.logger.Warn("indexer query failed",
						logging.String(logging.FieldIndexer, endpoint.Name),
						logging.String("query", variant),
						logging.Error(err),
					)
					continue
				}
				for _, candidate := range found {
					added := acc.add(candidate, func(c *media.Candidate) bool {
						return tagAndFilter(c, allow, nil)
					})
					if added {
						unique++
						if unique >= limit {
							break
						}
					}
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	results := acc.results()
	sortCandidates(results)
	return results
}

// SearchRound runs a round-driven search. When types is empty, every
// default-allow-listed session type the round has already started is
// considered; explicit types (the scheduler's single-event mode) are used
// as given.
func (o *Orchestrator) SearchRound(ctx context.Context, endpoints []indexer.Endpoint, round media.Round, types []classify.SessionType) []media.Candidate {
	sessions := types
	if len(sessions) == 0 {
		sessions = pastSessions(round, o.now())
	}
	if len(sessions) == 0 {
		return nil
	}

	allow := make(map[classify.SessionType]struct{}, len(sessions))
	for _, session := range sessions {
		allow[session] = struct{}{}
	}

	queries := make([]string, 0, len(sessions)*8)
	for _, session := range sessions {
		queries = append(queries, RoundQueries(round, session)...)
	}

	acc := newAccumulator()
	group, groupCtx := errgroup.WithContext(ctx)
	for _, endpoint := range endpoints {
		group.Go(func() error {
			unique := 0
			for _, query := range queries {
				if unique >= o.limit {
					break
				}
				found, err := o.searcher.Search(groupCtx, endpoint, query, o.limit)
				if err != nil {
					o.logger.Warn("indexer query failed",
						logging.String(logging.FieldIndexer, endpoint.Name),
						logging.String("query", query),
						logging.Error(err),
					)
					continue
				}
				for _, candidate := range found {
					added := acc.add(candidate, func(c *media.Candidate) bool {
						if !tagAndFilter(c, allow, &round) {
							return false
						}
						return MatchesRound(c.Title, round)
					})
					if added {
						unique++
						if unique >= o.limit {
							break
						}
					}
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	results := acc.results()
	sortCandidates(results)
	return results
}

// tagAndFilter classifies the candidate, stamps its event type and display
// label, and reports whether it survives the allow-list.
func tagAndFilter(c *media.Candidate, allow map[classify.SessionType]struct{}, round *media.Round) bool {
	session, ok := classify.Classify(c.Title)
	if !ok {
		return false
	}
	c.EventType = string(session)
	if round != nil {
		if round.HasEventType(string(session)) {
			c.Label = classify.DisplayLabel(session)
		} else {
			c.Label = "Other"
		}
	}
	if len(allow) == 0 {
		return true
	}
	_, allowed := allow[session]
	return allowed
}

// resolveAllowlist derives the effective session allow-list for an ad-hoc
// query. Explicit types win, except that the full default allow-list passed
// verbatim is narrowed to the type inferred from the query when inference
// succeeds.
func resolveAllowlist(query string, types []classify.SessionType) map[classify.SessionType]struct{} {
	effective := types
	if len(effective) == 0 || sameSessionSet(effective, classify.DefaultAllowlist()) {
		if inferred, ok := classify.Classify(query); ok {
			effective = []classify.SessionType{inferred}
		} else if len(effective) == 0 {
			effective = classify.DefaultAllowlist()
		}
	}
	allow := make(map[classify.SessionType]struct{}, len(effective))
	for _, session := range effective {
		allow[session] = struct{}{}
	}
	return allow
}

func sameSessionSet(a, b []classify.SessionType) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[classify.SessionType]struct{}, len(a))
	for _, session := range a {
		set[session] = struct{}{}
	}
	for _, session := range b {
		if _, ok := set[session]; !ok {
			return false
		}
	}
	return true
}

// pastSessions returns the allow-listed session types the round has already
// started. Sessions without a known start time are included; the scheduler
// gates on start times separately.
func pastSessions(round media.Round, now time.Time) []classify.SessionType {
	var sessions []classify.SessionType
	for _, session := range classify.DefaultAllowlist() {
		if !round.HasEventType(string(session)) {
			continue
		}
		if start := round.EventStart(string(session)); start != nil && start.After(now) {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

func sortCandidates(candidates []media.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].AgeDays != candidates[j].AgeDays {
			return candidates[i].AgeDays < candidates[j].AgeDays
		}
		if candidates[i].SizeMB != candidates[j].SizeMB {
			return candidates[i].SizeMB > candidates[j].SizeMB
		}
		return strings.ToLower(candidates[i].Title) < strings.ToLower(candidates[j].Title)
	})
}
