package app

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobscout/internal/api"
	"github.com/maxaizer/jobscout/internal/clients/gemini"
	"github.com/maxaizer/jobscout/internal/clients/ollama"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/notifier"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/maxaizer/jobscout/internal/scoring"
	"github.com/maxaizer/jobscout/internal/services"
	"github.com/maxaizer/jobscout/internal/sources"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// App holds every long-lived component. It is built once at startup and
// handed to whatever needs it.
type App struct {
	Config     *config.Config
	DB         *repositories.DbContext
	Bus        EventBus.Bus
	Postings   *repositories.Postings
	Runs       *repositories.Runs
	Matches    *repositories.Matches
	Candidates *repositories.Candidates
	Ingestion  *services.IngestionRunner
	Matching   *services.MatchingRunner

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Bus: EventBus.New()}

	if err := a.initStorage(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initIngestion(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initMatching(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initNotifications(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) initStorage() error {
	dbContext, err := repositories.NewDbContext(a.Config.DB)
	if err != nil {
		return fmt.Errorf("can't create db context: %w", err)
	}
	a.DB = dbContext
	a.closers = append(a.closers, dbContext.Close)

	if err = dbContext.Migrate(); err != nil {
		return fmt.Errorf("can't migrate db context: %w", err)
	}

	a.Postings = repositories.NewPostingsRepository(dbContext.DB)
	a.Runs = repositories.NewRunsRepository(dbContext.DB)
	a.Matches = repositories.NewMatchesRepository(dbContext.DB)
	a.Candidates = repositories.NewCandidatesRepository(dbContext.DB)
	return nil
}

func (a *App) initIngestion() error {
	cfg := a.Config.Ingestion

	client := sources.NewClient(cfg.UserAgent)
	client.SetRateLimit(cfg.MaxRequestsPerSecond)

	adapters, err := sources.Build(client, sources.Settings{
		DescriptionLimit:  cfg.DescriptionLimit,
		SmallFetchTimeout: cfg.SmallFetchTimeout,
		RemotiveLimit:     cfg.RemotiveLimit,
		HNMaxComments:     cfg.HNMaxComments,
		SearchKeywords:    cfg.SearchKeywords,
	}, cfg.EnabledSources)
	if err != nil {
		return fmt.Errorf("can't build sources: %w", err)
	}

	registry := sources.NewRegistry(cfg.FetchTimeout, adapters...)
	log.Infof("enabled sources: %v", registry.Names())

	a.Ingestion = services.NewIngestionRunner(registry, a.Postings, a.Runs)
	return nil
}

func (a *App) initMatching(ctx context.Context) error {
	generator, err := a.newGenerator(ctx)
	if err != nil {
		return err
	}

	cache, err := a.newScoreCache(ctx)
	if err != nil {
		return err
	}

	engine := scoring.NewEngine(generator, cache)
	engine.SetTimeout(a.Config.AI.Timeout)

	a.Matching = services.NewMatchingRunner(a.Bus, a.Postings, a.Matches, engine, a.Config.Matching)
	return nil
}

func (a *App) newGenerator(ctx context.Context) (scoring.Generator, error) {
	cfg := a.Config.AI

	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey, gemini.Model(cfg.Model), scoring.SystemInstruction)
		if err != nil {
			return nil, fmt.Errorf("can't create gemini client: %w", err)
		}
		client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
		client.SetDayRateLimit(cfg.MaxRequestsPerDay)
		a.closers = append(a.closers, client.Close)
		return client, nil
	case config.ProviderOllama:
		client, err := ollama.NewClient(cfg.OllamaURL, cfg.Model, scoring.SystemInstruction, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("can't create ollama client: %w", err)
		}
		client.SetFormat(json.RawMessage(scoring.JudgmentSchema))
		return client, nil
	default:
		log.Info("no llm provider configured, matches are scored by rules only")
		return nil, nil
	}
}

func (a *App) newScoreCache(ctx context.Context) (scoring.ScoreCache, error) {
	if a.Config.Redis.URL == "" {
		return scoring.NewMemoryCache(a.Config.AI.CacheTTL), nil
	}

	opts, err := redis.ParseURL(a.Config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("can't parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("redis ping failed, using in-memory score cache: %v", err)
		_ = client.Close()
		return scoring.NewMemoryCache(a.Config.AI.CacheTTL), nil
	}
	a.closers = append(a.closers, client.Close)
	return scoring.NewRedisCache(client, a.Config.AI.CacheTTL), nil
}

func (a *App) initNotifications() error {
	var telegram notifier.Notifier

	if token := a.Config.Telegram.Token; token != "" {
		botAPI, err := botApi.NewBotAPI(token)
		if err != nil {
			return fmt.Errorf("can't create telegram bot: %w", err)
		}
		if err = botApi.SetLogger(log.StandardLogger()); err != nil {
			return err
		}
		log.Infof("authorized on account %s", botAPI.Self.UserName)
		telegram = notifier.NewTelegramNotifier(botAPI)
	}

	_, err := notifier.NewDispatcher(a.Bus, telegram)
	return err
}

// Serve runs the API server, the ingestion scheduler and the optional
// retention cleaner until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if days := a.Config.Retention.PostingDays; days > 0 {
		cleaner, err := services.NewPostingsCleaner(a.Postings, days)
		if err != nil {
			return err
		}
		defer cleaner.Stop()
	}

	scheduler := services.NewIngestionScheduler(a.Ingestion, a.Config.Ingestion.Interval, a.Config.Ingestion.InitialDelay)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	server := api.NewServer(a.Config.API.Address, api.Dependencies{
		Ingestion:  a.Ingestion,
		Matching:   a.Matching,
		Postings:   a.Postings,
		Matches:    a.Matches,
		Candidates: a.Candidates,
	})
	err := server.Run(ctx)

	cancel()
	<-schedulerDone
	a.Bus.WaitAsync()
	return err
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Errorf("error during shutdown: %v", err)
		}
	}
	a.closers = nil
}
