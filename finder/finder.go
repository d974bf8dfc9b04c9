// Package finder implements the recipe-discovery convergence loop: repeated
// search + candidate-parse rounds that accumulate unique recipes until a
// target count is reached or the attempt budget is spent.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/trace"

	"pantryfinder"
	"pantryfinder/pantry"
	"pantryfinder/parser"
	"pantryfinder/search"
)

const (
	defaultTargetRecipes = 6
	defaultMaxAttempts   = 5
)

type searchClient interface {
	Search(ctx context.Context, req search.Request) (search.Response, error)
}

type contextLoader interface {
	Load(ctx context.Context, householdID string) (pantry.Context, error)
}

// Finder coordinates one discovery session at a time: strategy selection,
// search, candidate parsing, enrichment, and the audit trail. Sessions are
// strictly sequential within one call; state never crosses invocations.
type Finder struct {
	search  searchClient
	parser  parser.CandidateParser
	loader  contextLoader
	journal *pantry.Journal

	target      int
	maxAttempts int

	rng            *rand.Rand
	logger         pantryfinder.SessionLogger
	tracerProvider *trace.TracerProvider
	auditFailures  metric.Int64Counter
}

type Config struct {
	Search  searchClient
	Parser  parser.CandidateParser
	Loader  contextLoader
	Journal *pantry.Journal

	// TargetRecipes and MaxAttempts default to 6 and 5; they bound latency
	// and spend, since every attempt is a paid search plus an LLM call.
	TargetRecipes int
	MaxAttempts   int

	// Rand drives strategy selection. Injected so tests can seed it; nil
	// falls back to a time-seeded source.
	Rand *rand.Rand

	Logger         pantryfinder.SessionLogger
	TracerProvider *trace.TracerProvider
}

// New initializes a Finder.
func New(cfg Config) *Finder {
	if cfg.TargetRecipes <= 0 {
		cfg.TargetRecipes = defaultTargetRecipes
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = pantryfinder.NewNoOpSessionLogger()
	}

	meter := otel.Meter(pantryfinder.MeterNameFinder)
	auditFailures, err := meter.Int64Counter("recipe_finder.audit_persist_failures")
	if err != nil {
		slog.Error("FINDER: Failed to create audit failure counter", "error", err)
	}

	return &Finder{
		search:         cfg.Search,
		parser:         cfg.Parser,
		loader:         cfg.Loader,
		journal:        cfg.Journal,
		target:         cfg.TargetRecipes,
		maxAttempts:    cfg.MaxAttempts,
		rng:            cfg.Rand,
		logger:         cfg.Logger,
		tracerProvider: cfg.TracerProvider,
		auditFailures:  auditFailures,
	}
}

// Find runs one discovery session for a household. It returns enriched,
// ranked recipes on Satisfied or Exhausted; a hard search or parse failure
// aborts with no partial results and no audit events for the failed session.
func (f *Finder) Find(ctx context.Context, householdID string) (pantryfinder.FindResult, error) {
	tracer := otel.Tracer(pantryfinder.TracerNameFinder)
	if f.tracerProvider != nil {
		tracer = f.tracerProvider.Tracer(pantryfinder.TracerNameFinder)
	}
	ctx, span := tracer.Start(ctx, "Finder.Find")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", householdID))

	slog.Info("FINDER: Starting session", "household_id", householdID)

	snapshot, err := f.loader.Load(ctx, householdID)
	if err != nil {
		return pantryfinder.FindResult{}, fmt.Errorf("failed to load pantry context: %w", err)
	}
	ingredients := snapshot.IngredientNames()

	prefs, err := f.loadPreferences(ctx, householdID)
	if err != nil {
		return pantryfinder.FindResult{}, err
	}

	state := NewState()
	reasoning := make(map[string]string)
	var lastQuery string
	var totalResults int

	for !state.Terminal() {
		attempt := state.Attempts // zero-based iteration counter
		attemptLog := pantryfinder.AttemptLog{
			Attempt:    attempt + 1,
			Timestamp:  time.Now(),
			SearchPage: state.SearchPage,
		}

		strategy := search.SelectStrategy(attempt, f.rng)
		query := search.BuildQuery(strategy, ingredients)
		attemptLog.Strategy = strategy.Kind.String()
		attemptLog.Query = query

		slog.Info("FINDER: Searching",
			"attempt", attempt+1,
			"strategy", strategy.Kind.String(),
			"search_page", state.SearchPage,
			"accumulated", len(state.Filtered),
		)

		resp, err := f.search.Search(ctx, search.Request{
			Query:     query,
			Offset:    state.SearchPage,
			Freshness: strategy.Freshness,
		})
		if err != nil {
			attemptLog.Error = err.Error()
			f.logAttempt(attemptLog)
			return pantryfinder.FindResult{}, fmt.Errorf("search failed on attempt %d: %w", attempt+1, err)
		}
		attemptLog.ResultCount = len(resp.Results)
		lastQuery = query
		totalResults += len(resp.Results)

		parsed, err := f.parser.Parse(ctx, parser.Input{
			SearchResults:   resp.Results,
			Pantry:          snapshot,
			Preferences:     prefs,
			PreviousRecipes: state.Previous,
		})
		if err != nil {
			attemptLog.Error = err.Error()
			f.logAttempt(attemptLog)
			return pantryfinder.FindResult{}, fmt.Errorf("candidate parse failed on attempt %d: %w", attempt+1, err)
		}

		for id, why := range parsed.Reasoning {
			reasoning[id] = why
		}

		state = Advance(state, parsed.Recipes, f.target, f.maxAttempts)
		attemptLog.NewRecipes = len(parsed.Recipes)
		attemptLog.Accumulated = len(state.Filtered)
		f.logAttempt(attemptLog)

		slog.Info("FINDER: Attempt complete",
			"attempt", attempt+1,
			"new_recipes", len(parsed.Recipes),
			"accumulated", len(state.Filtered),
			"phase", state.Phase.String(),
		)
	}

	enriched := pantry.EnrichFromContext(state.Filtered, snapshot, reasoning)

	span.SetAttributes(
		attribute.String("finder.phase", state.Phase.String()),
		attribute.Int("finder.attempts", state.Attempts),
		attribute.Int("finder.recipes", len(enriched)),
	)

	// Audit trail only. A storage failure is surfaced in logs and metrics but
	// never costs the caller their recipes.
	f.persistAudit(ctx, householdID, lastQuery, totalResults, enriched)

	slog.Info("FINDER: Session complete",
		"phase", state.Phase.String(),
		"attempts", state.Attempts,
		"recipes", len(enriched),
	)

	return pantryfinder.FindResult{
		Recipes: enriched,
		Reasoning: fmt.Sprintf("found %d recipes in %d attempts (%s)",
			len(enriched), state.Attempts, state.Phase),
	}, nil
}

func (f *Finder) loadPreferences(ctx context.Context, householdID string) (pantry.Preferences, error) {
	events, err := f.journal.Events(ctx, householdID)
	if err != nil {
		return pantry.Preferences{}, fmt.Errorf("failed to read preference events: %w", err)
	}
	return pantry.ReducePreferences(events)
}

func (f *Finder) persistAudit(ctx context.Context, householdID, query string, resultsCount int, recipes []pantryfinder.Recipe) {
	searched := pantry.RecipesSearched{
		Query:        query,
		ResultsCount: resultsCount,
		HouseholdID:  householdID,
	}

	suggested := make([]pantry.RecipeSuggested, 0, len(recipes))
	for _, r := range recipes {
		suggested = append(suggested, pantry.RecipeSuggested{
			RecipeID:    r.ID,
			RecipeTitle: r.Title,
			Reasoning:   r.Reasoning,
			MatchScore:  r.MatchScore,
			HouseholdID: householdID,
		})
	}

	if err := f.journal.AppendSearchAudit(ctx, householdID, searched, suggested); err != nil {
		slog.Warn("FINDER: Failed to persist audit events", "error", err, "household_id", householdID)
		if f.auditFailures != nil {
			f.auditFailures.Add(ctx, 1)
		}
	}
}

func (f *Finder) logAttempt(attempt pantryfinder.AttemptLog) {
	if f.logger != nil {
		if err := f.logger.LogAttempt(attempt); err != nil {
			slog.Error("Failed to log session attempt", "error", err, "attempt", attempt.Attempt)
		}
	}
}
