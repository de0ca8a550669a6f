package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/varoOP/kinobot/internal/bot"
	"github.com/varoOP/kinobot/internal/cache"
	"github.com/varoOP/kinobot/internal/config"
	"github.com/varoOP/kinobot/internal/database"
	"github.com/varoOP/kinobot/internal/domain"
	"github.com/varoOP/kinobot/internal/extract"
	"github.com/varoOP/kinobot/internal/kinopoisk"
	"github.com/varoOP/kinobot/internal/logger"
	"github.com/varoOP/kinobot/internal/notification"
	"github.com/varoOP/kinobot/internal/scrape"
	"github.com/varoOP/kinobot/internal/search"
	"github.com/varoOP/kinobot/internal/serper"
)

// App represents the main application with all dependencies initialized
type App struct {
	log                 zerolog.Logger
	config              *domain.Config
	db                  *database.DB
	historyRepo         domain.HistoryRepo
	searchService       search.Service
	notificationService domain.NotificationService
	flow                *bot.Flow
}

// NewApp creates a new application instance with all dependencies initialized
func NewApp(v *viper.Viper) (*App, error) {
	// Load configuration
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := logger.NewLoggerWithLevel(level)

	db, err := database.NewDB(cfg.DatabaseDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	historyRepo := database.NewHistoryRepo(log, db)

	// Initialize services
	searchService := search.NewService(
		log,
		cfg,
		cache.NewMemory(cfg.CacheTTL),
		serper.NewClient(log, cfg.SerperAPIKey, cfg.SerperURL, cfg.UpstreamTimeout),
		kinopoisk.NewClient(log, cfg.KinopoiskAPIKey, cfg.KinopoiskURL, cfg.UpstreamTimeout),
		scrape.NewFetcher(log, cfg.UpstreamTimeout),
		extract.New(extract.LordfilmSchema),
	)
	notificationService := notification.NewService(log, cfg.DiscordWebhookURL)

	return &App{
		log:                 log,
		config:              cfg,
		db:                  db,
		historyRepo:         historyRepo,
		searchService:       searchService,
		notificationService: notificationService,
		flow:                bot.NewFlow(log, cfg, searchService, historyRepo, notificationService),
	}, nil
}

// Run serves Telegram updates until ctx is done
func (a *App) Run(ctx context.Context) (err error) {
	// Send error notification if run fails
	defer func() {
		if err != nil {
			if notifyErr := a.notificationService.SendError(context.Background(), err); notifyErr != nil {
				a.log.Warn().Err(notifyErr).Msg("Failed to send error notification")
			}
		}
	}()

	b, err := bot.New(a.log, a.config.TelegramToken, a.flow)
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	if notifyErr := a.notificationService.SendStarted(ctx, b.Username()); notifyErr != nil {
		a.log.Warn().Err(notifyErr).Msg("Failed to send startup notification")
	}

	<-ctx.Done()
	a.log.Info().Msg("Shutting down")

	if err := b.Stop(); err != nil {
		return fmt.Errorf("failed to stop bot: %w", err)
	}

	return nil
}

// Search runs one aggregation outside of Telegram
func (a *App) Search(ctx context.Context, title string) (domain.MovieRecord, error) {
	return a.searchService.SearchMovieInfo(ctx, title)
}

// Stats returns the view counters of userID, or of every user when userID is 0
func (a *App) Stats(ctx context.Context, userID int64, limit int) ([]domain.StatRecord, error) {
	if userID == 0 {
		return a.historyRepo.ListAllStats(ctx, limit)
	}

	if limit <= 0 {
		limit = a.config.HistoryLimit
	}
	return a.historyRepo.ListStats(ctx, userID, limit)
}

// Close releases the database
func (a *App) Close() error {
	return a.db.Close()
}
