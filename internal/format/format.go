package format

import (
	"fmt"
	"html"
	"io"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pkg/errors"
	"github.com/varoOP/kinobot/internal/domain"
	"gopkg.in/yaml.v3"
)

const timeLayout = "2006-01-02 15:04:05"

// Caps in UTF-16 units so the whole card stays under Telegram's 4096 unit limit.
// Both fields may come from scraped pages of any size.
const (
	MaxTitle       = 256
	MaxDescription = 3000
)

const (
	emptyHistory  = "Ты пока ничего не искал."
	emptyStats    = "Нет данных по просмотрам."
	emptyAllStats = "Нет данных."
	noLink        = "Ссылка на просмотр не найдена."
)

// Record renders rec as a Telegram HTML message
func Record(rec domain.MovieRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(Truncate(rec.Title, MaxTitle)))
	fmt.Fprintf(&b, "%s\n\n", html.EscapeString(Truncate(rec.Description, MaxDescription)))
	fmt.Fprintf(&b, "Жанр: %s\n", html.EscapeString(rec.Genre))
	fmt.Fprintf(&b, "Год: %s\n", html.EscapeString(rec.Year))
	fmt.Fprintf(&b, "Длительность: %s\n", html.EscapeString(rec.Runtime))
	fmt.Fprintf(&b, "Рейтинг: %s\n\n", html.EscapeString(rec.Rating))

	if rec.Link != "" {
		fmt.Fprintf(&b, `<a href="%s">Смотреть</a>`, html.EscapeString(rec.Link))
	} else {
		b.WriteString(noLink)
	}

	return b.String()
}

// History renders the query history of one user, newest first.
// limit is only used in the header.
func History(rows []domain.HistoryRecord, limit int) string {
	if len(rows) == 0 {
		return emptyHistory
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Твоя история запросов (последние %d):\n", limit)
	for _, r := range rows {
		fmt.Fprintf(&b, "%s — %s\n", r.At.Format(timeLayout), r.Title)
	}

	return b.String()
}

// Stats renders the view counters of one user
func Stats(rows []domain.StatRecord) string {
	if len(rows) == 0 {
		return emptyStats
	}

	var b strings.Builder
	b.WriteString("Статистика по просмотрам:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %d\n", r.Title, r.Count)
	}

	return b.String()
}

// AllStats renders the counters of every user
func AllStats(rows []domain.StatRecord) string {
	if len(rows) == 0 {
		return emptyAllStats
	}

	var b strings.Builder
	b.WriteString("Общая статистика:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "👤 %d: %s — %d\n", r.UserID, r.Title, r.Count)
	}

	return b.String()
}

// Truncate shortens s to at most limit UTF-16 units, ending it with "…"
// when anything was cut
func Truncate(s string, limit int) string {
	if Units(s) <= limit {
		return s
	}

	var (
		b    strings.Builder
		size int
	)
	for _, r := range s {
		n := len(utf16.Encode([]rune{r}))
		if size+n > limit-1 {
			break
		}
		b.WriteRune(r)
		size += n
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace) + "…"
}

// Units counts s the way Telegram measures message length
func Units(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// WriteYAML encodes v to w with two-space indentation
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode yaml")
	}

	return enc.Close()
}
