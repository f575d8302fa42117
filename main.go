package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mudler/xlog"

	"github.com/memorai/memorai/core/memory"
	"github.com/memorai/memorai/core/retention"
	"github.com/memorai/memorai/db"
	"github.com/memorai/memorai/pkg/providers"
	"github.com/memorai/memorai/webui"
)

var (
	listenAddr      = os.Getenv("MEMORAI_LISTEN_ADDR")
	databaseDSN     = os.Getenv("MEMORAI_DATABASE_DSN")
	defaultProvider = os.Getenv("MEMORAI_DEFAULT_PROVIDER")
	defaultModel    = os.Getenv("MEMORAI_MODEL")
	memoryStrategy  = os.Getenv("MEMORAI_MEMORY_STRATEGY")
	pruneSchedule   = os.Getenv("MEMORAI_PRUNE_SCHEDULE")
	retentionDays   = os.Getenv("MEMORAI_RETENTION_DAYS")
	minImportance   = os.Getenv("MEMORAI_MIN_IMPORTANCE")
	providerTimeout = os.Getenv("MEMORAI_PROVIDER_TIMEOUT")

	openAIKey   = os.Getenv("MEMORAI_OPENAI_API_KEY")
	openAIURL   = os.Getenv("MEMORAI_OPENAI_API_URL")
	qwenKey     = os.Getenv("MEMORAI_QWEN_API_KEY")
	deepSeekKey = os.Getenv("MEMORAI_DEEPSEEK_API_KEY")
)

func init() {
	_ = godotenv.Load()

	if listenAddr == "" {
		listenAddr = ":8000"
	}
	if databaseDSN == "" {
		databaseDSN = "memorai.db"
	}
	if defaultModel == "" {
		defaultModel = "gpt-3.5-turbo"
	}
	if memoryStrategy == "" {
		memoryStrategy = string(memory.StrategyKeyword)
	}
	if pruneSchedule == "" {
		pruneSchedule = "@daily"
	}
	if providerTimeout == "" {
		providerTimeout = "30s"
	}
}

func intEnv(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func main() {
	db.ConnectDB(databaseDSN)

	engine := memory.NewEngine(db.DB, memory.WithStrategy(memory.Strategy(memoryStrategy)))

	factory := providers.NewFactory(providers.Config{
		DefaultProvider: defaultProvider,
		OpenAIAPIKey:    openAIKey,
		OpenAIBaseURL:   openAIURL,
		Timeout:         providerTimeout,
		QwenAPIKey:      qwenKey,
		DeepSeekAPIKey:  deepSeekKey,
	})

	scheduler := retention.NewScheduler(
		db.DB,
		engine,
		pruneSchedule,
		intEnv(retentionDays, 30),
		intEnv(minImportance, 3),
	)
	if err := scheduler.Start(); err != nil {
		xlog.Error("Retention scheduler not started", "error", err)
	}
	defer scheduler.Stop()

	app := webui.NewApp(
		webui.WithDB(db.DB),
		webui.WithEngine(engine),
		webui.WithProviders(factory),
		webui.WithDefaultModel(defaultModel),
	)

	xlog.Info("memorai listening", "addr", listenAddr, "strategy", memoryStrategy)
	if err := app.Listen(listenAddr); err != nil {
		xlog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
