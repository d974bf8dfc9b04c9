package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"pantryfinder"
	"pantryfinder/eventstore"
	"pantryfinder/finder"
	"pantryfinder/pantry"
	"pantryfinder/parser/bedrock"
	"pantryfinder/search"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
)

type Params struct {
	HouseholdID string `json:"household_id"`
}

type Results struct {
	Output pantryfinder.FindResult `json:"output"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
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

		householdID := params.HouseholdID
		if householdID == "" {
			householdID = finderConfig.HouseholdID
		}

		// S3 config from env
		s3Bucket := os.Getenv("EVENT_LOG_S3_BUCKET")
		s3Key := os.Getenv("EVENT_LOG_S3_KEY")
		if s3Bucket == "" || s3Key == "" {
			return Results{}, fmt.Errorf("missing S3 config: EVENT_LOG_S3_BUCKET, EVENT_LOG_S3_KEY must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client := s3.NewFromConfig(awsCfg)

		store, err := eventstore.NewS3Store(ctx, s3Client, s3Bucket, s3Key)
		if err != nil {
			slog.Error("SETUP: Failed to load event log from S3", "error", err)
			return Results{}, err
		}
		slog.Info("SETUP: S3 event log loaded", "bucket", s3Bucket, "key", s3Key)

		searchClient, err := search.NewClient(search.ClientOpts{
			APIKey:     searchConfig.APIKey,
			Endpoint:   searchConfig.Endpoint,
			Count:      searchConfig.Count,
			SafeSearch: searchConfig.SafeSearch,
			HTTPClient: http.DefaultClient,
		})
		if err != nil {
			slog.Error("SETUP: Failed to create search client", "error", err)
			return Results{}, err
		}

		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to create Bedrock client", "error", err)
			return Results{}, err
		}

		candidateParser := bedrock.NewParser(brc, bedrock.Options{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		})

		tracerProvider, meterProvider, otelShutdown, err := pantryfinder.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		_ = meterProvider
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		result, err := finder.New(finder.Config{
			Search:         searchClient,
			Parser:         candidateParser,
			Loader:         pantry.NewContextLoader(store, nil),
			Journal:        pantry.NewJournal(store),
			TargetRecipes:  finderConfig.TargetRecipes,
			MaxAttempts:    finderConfig.MaxAttempts,
			Logger:         pantryfinder.NewStdoutSessionLogger(),
			TracerProvider: tracerProvider,
		}).Find(ctx, householdID)
		if err != nil {
			slog.Error("RESULT: Discovery session failed", "error", err)
			return Results{}, err
		}

		return Results{Output: result}, nil
	}

	lambda.Start(fn)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
