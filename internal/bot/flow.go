package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/domain"
	"github.com/varoOP/kinobot/internal/format"
	"github.com/varoOP/kinobot/internal/search"
)

const (
	startText = "Привет, я кино-бот! Просто напиши название фильма или сериала, " +
		"и я найду описание, рейтинг и ссылку для бесплатного просмотра."

	helpText = "/start — старт бота\n" +
		"/help — помощь\n" +
		"Просто отправь название фильма/сериала\n" +
		"Команды:\n" +
		"/history — история твоих запросов\n" +
		"/stats — статистика просмотров\n" +
		"/clear_history — очистить историю"

	emptyQueryText     = "Напишите название фильма для поиска"
	searchFailedText   = "Что-то сломалось на поиске. Попробуй позже."
	storageFailedText  = "Не удалось прочитать данные. Попробуй позже."
	historyClearedText = "История очищена!"
)

// Reply is the text to send back to the user. An empty Text sends nothing.
type Reply struct {
	Text string
	HTML bool
}

// Flow holds the per-command logic independent of the Telegram transport
type Flow struct {
	log    zerolog.Logger
	config *domain.Config
	search search.Service
	repo   domain.HistoryRepo
	notify domain.NotificationService
	now    func() time.Time
}

func NewFlow(log zerolog.Logger, config *domain.Config, searcher search.Service, repo domain.HistoryRepo, notify domain.NotificationService) *Flow {
	return &Flow{
		log:    log.With().Str("module", "bot").Logger(),
		config: config,
		search: searcher,
		repo:   repo,
		notify: notify,
		now:    time.Now,
	}
}

func (f *Flow) Start() Reply {
	return Reply{Text: startText}
}

func (f *Flow) Help() Reply {
	return Reply{Text: helpText}
}

// Search resolves text and records the query for userID.
// A failed history write is logged and the card is still sent.
func (f *Flow) Search(ctx context.Context, userID int64, text string) Reply {
	title := strings.TrimSpace(text)
	if title == "" {
		return Reply{Text: emptyQueryText}
	}

	f.log.Info().Int64("user_id", userID).Str("title", title).Msg("movie requested")

	rec, err := f.search.SearchMovieInfo(ctx, title)
	if err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Str("title", title).Msg("search failed")
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			if nerr := f.notify.SendError(ctx, err); nerr != nil {
				f.log.Warn().Err(nerr).Msg("failed to send error notification")
			}
		}
		return Reply{Text: searchFailedText}
	}

	if err := f.repo.RecordQuery(ctx, userID, title, rec.Title, f.now()); err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Str("title", title).Msg("failed to record query")
	}

	return Reply{Text: format.Record(rec), HTML: true}
}

func (f *Flow) History(ctx context.Context, userID int64) Reply {
	rows, err := f.repo.ListHistory(ctx, userID, f.config.HistoryLimit)
	if err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list history")
		return Reply{Text: storageFailedText}
	}

	return Reply{Text: format.History(rows, f.config.HistoryLimit)}
}

func (f *Flow) Stats(ctx context.Context, userID int64) Reply {
	rows, err := f.repo.ListStats(ctx, userID, f.config.HistoryLimit)
	if err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list stats")
		return Reply{Text: storageFailedText}
	}

	return Reply{Text: format.Stats(rows)}
}

// ClearHistory drops the history of userID, view counters stay
func (f *Flow) ClearHistory(ctx context.Context, userID int64) Reply {
	n, err := f.repo.ClearHistory(ctx, userID)
	if err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Msg("failed to clear history")
		return Reply{Text: storageFailedText}
	}

	f.log.Debug().Int64("user_id", userID).Int64("deleted", n).Msg("history cleared")
	return Reply{Text: historyClearedText}
}

// AllStats is admin only; other users get no reply
func (f *Flow) AllStats(ctx context.Context, userID int64) Reply {
	if !f.config.IsAdmin(userID) {
		f.log.Debug().Int64("user_id", userID).Msg("stats_all denied")
		return Reply{}
	}

	rows, err := f.repo.ListAllStats(ctx, 0)
	if err != nil {
		f.log.Error().Err(err).Msg("failed to list all stats")
		return Reply{Text: storageFailedText}
	}

	return Reply{Text: format.AllStats(rows)}
}
