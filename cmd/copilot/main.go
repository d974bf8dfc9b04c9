// Command copilot runs a single tool from the registry against the local
// event log. Usage:
//
//	copilot <tool-name> ['{"household_id":"..."}']
//
// With no arguments it lists the available tools and their schemas.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"

	"pantryfinder"
	"pantryfinder/eventstore"
	"pantryfinder/finder"
	"pantryfinder/pantry"
	"pantryfinder/parser/bedrock"
	"pantryfinder/search"
	"pantryfinder/tools"
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

	store, err := eventstore.NewFileStore(finderConfig.EventLogPath)
	if err != nil {
		slog.Error("SETUP: Failed to open event log", "error", err)
		return
	}
	defer store.Close()

	registry, err := newRegistry(ctx, store, modelConfig, searchConfig, finderConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}

	if len(os.Args) < 2 {
		listTools(registry)
		return
	}

	tool, err := registry.GetTool(os.Args[1])
	if err != nil {
		slog.Error("Unknown tool", "error", err)
		return
	}

	input := map[string]any{"household_id": finderConfig.HouseholdID}
	if len(os.Args) > 2 {
		if err := json.Unmarshal([]byte(os.Args[2]), &input); err != nil {
			slog.Error("Invalid tool input", "error", err)
			return
		}
	}

	tracerProvider, _, otelShutdown, err := pantryfinder.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	ctx, span := tracerProvider.Tracer(pantryfinder.TracerNameCopilot).Start(ctx, tool.Name())
	span.SetAttributes(attribute.String("tool.name", tool.Name()))
	defer span.End()

	output, err := tool.Run(ctx, input)
	if err != nil {
		slog.Error("RESULT: Tool run failed", "tool", tool.Name(), "error", err)
		return
	}

	pretty, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		slog.Error("RESULT: Failed to render output", "error", err)
		return
	}
	fmt.Println(string(pretty))
}

func newRegistry(ctx context.Context, store eventstore.Store, modelConfig pantryfinder.ModelConfig, searchConfig pantryfinder.SearchConfig, finderConfig pantryfinder.FinderConfig) (*tools.Registry, error) {
	searchClient, err := search.NewClient(search.ClientOpts{
		APIKey:     searchConfig.APIKey,
		Endpoint:   searchConfig.Endpoint,
		Count:      searchConfig.Count,
		SafeSearch: searchConfig.SafeSearch,
		HTTPClient: http.DefaultClient,
	})
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}

	candidateParser := bedrock.NewParser(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
		ModelID:     modelConfig.ModelID,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		TopP:        modelConfig.TopP,
	})

	loader := pantry.NewContextLoader(store, nil)
	recipeFinder := finder.New(finder.Config{
		Search:        searchClient,
		Parser:        candidateParser,
		Loader:        loader,
		Journal:       pantry.NewJournal(store),
		TargetRecipes: finderConfig.TargetRecipes,
		MaxAttempts:   finderConfig.MaxAttempts,
	})

	return tools.NewRegistry(loader, recipeFinder)
}

func listTools(registry *tools.Registry) {
	for _, tool := range registry.GetTools() {
		fmt.Printf("%s\t%s\n", tool.Name(), tool.Description())
	}
}
