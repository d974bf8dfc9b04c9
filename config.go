package pantryfinder

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=2048"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type SearchConfig struct {
	APIKey     string `env:"BRAVE_SEARCH_API_KEY,required"`
	Endpoint   string `env:"BRAVE_SEARCH_ENDPOINT,default=https://api.search.brave.com/res/v1/web/search"`
	Count      int    `env:"SEARCH_RESULT_COUNT,default=10"`
	SafeSearch string `env:"SEARCH_SAFESEARCH,default=moderate"`
}

type FinderConfig struct {
	TargetRecipes int    `env:"TARGET_RECIPES,default=6"`
	MaxAttempts   int    `env:"MAX_SEARCH_ATTEMPTS,default=5"`
	EventLogPath  string `env:"EVENT_LOG_PATH,default=artifacts/events.jsonl"`
	HouseholdID   string `env:"HOUSEHOLD_ID,default=demo-household"`
}
