package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pantryfinder"
	"pantryfinder/eventstore"
	"pantryfinder/finder"
	"pantryfinder/pantry"
	"pantryfinder/parser/bedrock"
	"pantryfinder/search"
	"pantryfinder/slack"
)

func main() {
	ctx := context.Background()

	var modelConfig pantryfinder.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var searchConfig pantryfinder.SearchConfig
	if err := envdecode.Decode(&searchConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var finderConfig pantryfinder.FinderConfig
	if err := envdecode.Decode(&finderConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	householdID := argOr(1, finderConfig.HouseholdID)

	store, err := eventstore.NewFileStore(finderConfig.EventLogPath)
	if err != nil {
		slog.Error("SETUP: Failed to open event log", "error", err)
		return
	}
	defer store.Close()

	journal := pantry.NewJournal(store)
	if err := seedDemoPantry(ctx, journal, householdID); err != nil {
		slog.Error("SETUP: Failed to seed pantry", "error", err)
		return
	}

	searchClient, err := search.NewClient(search.ClientOpts{
		APIKey:     searchConfig.APIKey,
		Endpoint:   searchConfig.Endpoint,
		Count:      searchConfig.Count,
		SafeSearch: searchConfig.SafeSearch,
		HTTPClient: http.DefaultClient,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create search client", "error", err)
		return
	}

	brc, err := newBedrockRuntimeClient(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to create Bedrock client", "error", err)
		return
	}

	candidateParser := bedrock.NewParser(brc, bedrock.Options{
		ModelID:     modelConfig.ModelID,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		TopP:        modelConfig.TopP,
	})

	logger, cleanup, err := newSessionLogger(householdID)
	if err != nil {
		slog.Error("SETUP: Failed to create session logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush session log", "error", err)
		}
	}()

	tracerProvider, meterProvider, otelShutdown, err := pantryfinder.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	_ = meterProvider
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(pantryfinder.TracerNameFinder)
	ctx, span := tracer.Start(ctx, pantryfinder.TracerNameFinder, trace.WithAttributes(
		attribute.String("household.id", householdID),
		attribute.String("model.id", modelConfig.ModelID),
		attribute.Int("finder.target_recipes", finderConfig.TargetRecipes),
		attribute.Int("finder.max_attempts", finderConfig.MaxAttempts),
	))
	defer span.End()

	result, err := finder.New(finder.Config{
		Search:         searchClient,
		Parser:         candidateParser,
		Loader:         pantry.NewContextLoader(store, nil),
		Journal:        journal,
		TargetRecipes:  finderConfig.TargetRecipes,
		MaxAttempts:    finderConfig.MaxAttempts,
		Logger:         logger,
		TracerProvider: tracerProvider,
	}).Find(ctx, householdID)
	if err != nil {
		slog.Error("RESULT: Discovery session failed", "error", err)
		return
	}

	for i, r := range result.Recipes {
		slog.Info("RESULT: Recipe",
			"rank", i+1,
			"title", r.Title,
			"match_percent", r.MatchPercent,
			"url", r.URL,
		)
	}

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := new(bytes.Buffer)
		body.ReadFrom(r.Body) // nolint: errcheck
		slog.Info("FINAL: Received request",
			"method", r.Method,
			"path", r.URL.Path,
			"header", r.Header,
			"body", body.String(),
		)
		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()

	slackClient := slack.NewClient(testServer.URL, http.DefaultClient)
	if err := slackClient.PostRecipes(ctx, "#kitchen", result); err != nil {
		slog.Error("Failed to post digest to Slack", "error", err)
	}
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

// seedDemoPantry populates a small starter pantry the first time a household's
// event stream is empty, so a fresh checkout produces recipes immediately.
func seedDemoPantry(ctx context.Context, journal *pantry.Journal, householdID string) error {
	events, err := journal.Events(ctx, householdID)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		return nil
	}

	slog.Info("SETUP: Seeding demo pantry", "household_id", householdID)
	for _, item := range []pantry.Item{
		{ID: uuid.New(), HouseholdID: householdID, Name: "chicken breast", Quantity: 2, Category: "meat"},
		{ID: uuid.New(), HouseholdID: householdID, Name: "rice", Quantity: 1, Category: "grains"},
		{ID: uuid.New(), HouseholdID: householdID, Name: "eggs", Quantity: 12, Category: "dairy"},
		{ID: uuid.New(), HouseholdID: householdID, Name: "broccoli", Quantity: 1, Category: "produce"},
		{ID: uuid.New(), HouseholdID: householdID, Name: "soy sauce", Quantity: 1, Category: "condiments"},
		{ID: uuid.New(), HouseholdID: householdID, Name: "garlic", Quantity: 3, Category: "produce"},
	} {
		if err := journal.AppendItemAdded(ctx, householdID, item); err != nil {
			return err
		}
	}
	return nil
}

func newSessionLogger(householdID string) (pantryfinder.SessionLogger, func() error, error) {
	logFilePath := pantryfinder.NewSessionLogFilePath(householdID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := pantryfinder.NewFileSessionLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
