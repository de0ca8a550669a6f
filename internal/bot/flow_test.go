package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/database"
	"github.com/varoOP/kinobot/internal/domain"
)

type fakeSearch struct {
	rec   domain.MovieRecord
	err   error
	calls []string
}

func (f *fakeSearch) SearchMovieInfo(_ context.Context, title string) (domain.MovieRecord, error) {
	f.calls = append(f.calls, title)
	return f.rec, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	errors []error
}

func (n *fakeNotifier) SendStarted(context.Context, string) error { return nil }

func (n *fakeNotifier) SendError(_ context.Context, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, err)
	return nil
}

type failingRepo struct {
	domain.HistoryRepo
}

func (failingRepo) RecordQuery(context.Context, int64, string, string, time.Time) error {
	return errors.New("disk full")
}

func (failingRepo) ListHistory(context.Context, int64, int) ([]domain.HistoryRecord, error) {
	return nil, errors.New("disk full")
}

func newFlow(t *testing.T, s *fakeSearch, repo domain.HistoryRepo, n *fakeNotifier) *Flow {
	t.Helper()
	if repo == nil {
		db, err := database.NewDB(t.TempDir(), zerolog.Nop())
		if err != nil {
			t.Fatalf("NewDB: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		repo = database.NewHistoryRepo(zerolog.Nop(), db)
	}
	cfg := &domain.Config{HistoryLimit: 20, AdminIDs: []int64{1}}
	f := NewFlow(zerolog.Nop(), cfg, s, repo, n)
	f.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return f
}

func TestSearchEmptyText(t *testing.T) {
	s := &fakeSearch{}
	f := newFlow(t, s, nil, &fakeNotifier{})

	for _, text := range []string{"", "   ", "\n\t"} {
		got := f.Search(context.Background(), 10, text)
		if got.Text != "Напишите название фильма для поиска" || got.HTML {
			t.Errorf("Search(%q) = %+v", text, got)
		}
	}
	if len(s.calls) != 0 {
		t.Fatalf("search called for empty text: %v", s.calls)
	}
}

func TestSearchRecordsHistoryAndStats(t *testing.T) {
	s := &fakeSearch{rec: domain.MovieRecord{
		Title:  "Дюна",
		Link:   "https://lordfilm.example/dune",
		Source: domain.SourceKinopoisk,
	}.WithDefaults("дюна")}
	f := newFlow(t, s, nil, &fakeNotifier{})
	ctx := context.Background()

	got := f.Search(ctx, 10, "  дюна  ")
	if !got.HTML {
		t.Fatal("card must be HTML")
	}
	if !strings.HasPrefix(got.Text, "<b>Дюна</b>") || !strings.Contains(got.Text, "Смотреть") {
		t.Fatalf("card = %q", got.Text)
	}
	if len(s.calls) != 1 || s.calls[0] != "дюна" {
		t.Fatalf("calls = %v", s.calls)
	}

	f.Search(ctx, 10, "dune")

	history := f.History(ctx, 10)
	want := "Твоя история запросов (последние 20):\n" +
		"2024-01-02 03:04:05 — dune\n" +
		"2024-01-02 03:04:05 — дюна\n"
	if history.Text != want {
		t.Fatalf("history = %q, want %q", history.Text, want)
	}

	stats := f.Stats(ctx, 10)
	if stats.Text != "Статистика по просмотрам:\nДюна: 2\n" {
		t.Fatalf("stats = %q", stats.Text)
	}
}

func TestSearchFailure(t *testing.T) {
	n := &fakeNotifier{}
	s := &fakeSearch{err: errors.New("lookup panicked")}
	f := newFlow(t, s, nil, n)
	ctx := context.Background()

	got := f.Search(ctx, 10, "дюна")
	if got.Text != "Что-то сломалось на поиске. Попробуй позже." {
		t.Fatalf("reply = %+v", got)
	}
	if len(n.errors) != 1 {
		t.Fatalf("notifications = %v", n.errors)
	}
	if h := f.History(ctx, 10); h.Text != "Ты пока ничего не искал." {
		t.Fatalf("failed search recorded: %q", h.Text)
	}
}

func TestSearchCancelledIsNotNotified(t *testing.T) {
	n := &fakeNotifier{}
	s := &fakeSearch{err: context.Canceled}
	f := newFlow(t, s, nil, n)

	got := f.Search(context.Background(), 10, "дюна")
	if got.Text != "Что-то сломалось на поиске. Попробуй позже." {
		t.Fatalf("reply = %+v", got)
	}
	if len(n.errors) != 0 {
		t.Fatalf("cancellation notified: %v", n.errors)
	}
}

func TestSearchRepliesWhenHistoryWriteFails(t *testing.T) {
	s := &fakeSearch{rec: domain.NotFoundRecord()}
	f := newFlow(t, s, failingRepo{}, &fakeNotifier{})

	got := f.Search(context.Background(), 10, "zzz")
	if !got.HTML || !strings.Contains(got.Text, "Ничего не найдено") {
		t.Fatalf("reply = %+v", got)
	}

	if h := f.History(context.Background(), 10); h.Text != "Не удалось прочитать данные. Попробуй позже." {
		t.Fatalf("history = %q", h.Text)
	}
}

func TestClearHistory(t *testing.T) {
	s := &fakeSearch{rec: domain.NotFoundRecord()}
	f := newFlow(t, s, nil, &fakeNotifier{})
	ctx := context.Background()

	f.Search(ctx, 10, "дюна")
	if got := f.ClearHistory(ctx, 10); got.Text != "История очищена!" {
		t.Fatalf("reply = %q", got.Text)
	}
	if h := f.History(ctx, 10); h.Text != "Ты пока ничего не искал." {
		t.Fatalf("history = %q", h.Text)
	}
	if st := f.Stats(ctx, 10); !strings.Contains(st.Text, "Ничего не найдено: 1") {
		t.Fatalf("stats lost: %q", st.Text)
	}
}

func TestAllStatsAdminOnly(t *testing.T) {
	s := &fakeSearch{rec: domain.MovieRecord{Title: "Дюна"}.WithDefaults("дюна")}
	f := newFlow(t, s, nil, &fakeNotifier{})
	ctx := context.Background()

	if got := f.AllStats(ctx, 1); got.Text != "Нет данных." {
		t.Fatalf("empty all stats = %q", got.Text)
	}

	f.Search(ctx, 10, "дюна")
	f.Search(ctx, 11, "дюна")
	f.Search(ctx, 11, "дюна")

	if got := f.AllStats(ctx, 10); got.Text != "" {
		t.Fatalf("non-admin got %q", got.Text)
	}

	got := f.AllStats(ctx, 1)
	want := "Общая статистика:\n👤 11: Дюна — 2\n👤 10: Дюна — 1\n"
	if got.Text != want {
		t.Fatalf("all stats = %q, want %q", got.Text, want)
	}
}

func TestStaticReplies(t *testing.T) {
	f := newFlow(t, &fakeSearch{}, nil, &fakeNotifier{})

	if !strings.HasPrefix(f.Start().Text, "Привет, я кино-бот!") {
		t.Errorf("start = %q", f.Start().Text)
	}
	for _, cmd := range []string{"/history", "/stats", "/clear_history"} {
		if !strings.Contains(f.Help().Text, cmd) {
			t.Errorf("help misses %s", cmd)
		}
	}
}
