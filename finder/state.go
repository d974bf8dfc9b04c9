package finder

import "pantryfinder"

// Phase is where a discovery session stands in its lifecycle.
type Phase int

const (
	// PhaseSearching means the next step is a search + parse round trip.
	PhaseSearching Phase = iota
	// PhaseSatisfied means the target recipe count was reached. Terminal.
	PhaseSatisfied
	// PhaseExhausted means the attempt budget ran out below target. Terminal,
	// but still a success: whatever accumulated is returned.
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseSatisfied:
		return "satisfied"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "searching"
	}
}

// State is one immutable snapshot of the accumulator between steps. The loop
// holds no shared mutable reference: each step takes a State and returns the
// next one, so every intermediate state is independently testable.
type State struct {
	Phase Phase

	// Filtered only grows while the session runs; enrichment reorders a copy
	// at the end.
	Filtered []pantryfinder.Recipe

	// Previous snapshots Filtered for the next candidate-parse call. nil on
	// the first call signals that no diversity filtering is needed.
	Previous []pantryfinder.Recipe

	SearchPage int
	Attempts   int
}

// NewState is the initial accumulator: empty, page zero, nil previous.
func NewState() State {
	return State{Phase: PhaseSearching}
}

// Terminal reports whether the session is done.
func (s State) Terminal() bool {
	return s.Phase == PhaseSatisfied || s.Phase == PhaseExhausted
}

// Advance folds one attempt's newly parsed recipes into the accumulator and
// decides the next phase. New recipes are appended as-is; semantic dedup
// against Previous is the candidate parser's job, not ours.
func Advance(s State, newRecipes []pantryfinder.Recipe, target, maxAttempts int) State {
	filtered := make([]pantryfinder.Recipe, 0, len(s.Filtered)+len(newRecipes))
	filtered = append(filtered, s.Filtered...)
	filtered = append(filtered, newRecipes...)

	next := State{
		Filtered:   filtered,
		SearchPage: s.SearchPage,
		Attempts:   s.Attempts + 1,
	}

	switch {
	case len(filtered) >= target:
		next.Phase = PhaseSatisfied
	case next.Attempts >= maxAttempts:
		next.Phase = PhaseExhausted
	default:
		next.Phase = PhaseSearching
		next.SearchPage = s.SearchPage + 1
		next.Previous = filtered
	}

	return next
}
