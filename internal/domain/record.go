package domain

import (
	"strings"
	"time"
)

// Source identifies which upstream produced a MovieRecord
type Source string

const (
	SourceKinopoisk Source = "kinopoisk"
	SourceLordfilm  Source = "lordfilm"
	SourceRutube    Source = "rutube"
	SourceNone      Source = "none"
)

// Sentinel values shown to the user when an upstream has nothing for a field
const (
	NothingFound  = "Ничего не найдено"
	NoDescription = "Описание отсутствует"
	LinkAvailable = "Ссылка на просмотр доступна"
	NoRating      = "Рейтинг не найден"
	NoGenre       = "Жанр не найден"
	NoYear        = "Год не найден"
	Missing       = "-"
)

// MovieRecord is the normalized result of a title lookup.
// Poster and Link are empty when unknown, CachedAt is zero until the record is cached.
type MovieRecord struct {
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Genre       string    `json:"genre" yaml:"genre"`
	Year        string    `json:"year" yaml:"year"`
	Runtime     string    `json:"runtime" yaml:"runtime"`
	Rating      string    `json:"rating" yaml:"rating"`
	Poster      string    `json:"poster,omitempty" yaml:"poster,omitempty"`
	Link        string    `json:"link,omitempty" yaml:"link,omitempty"`
	Source      Source    `json:"source" yaml:"source"`
	CachedAt    time.Time `json:"cache_time,omitempty" yaml:"cache_time,omitempty"`
}

// WithDefaults fills every unset field with its sentinel.
// The nothing-found record keeps its empty description.
func (r MovieRecord) WithDefaults(query string) MovieRecord {
	if r.Title == "" {
		r.Title = query
	}
	if r.Source == "" {
		r.Source = SourceNone
	}
	if r.Description == "" && !(r.Source == SourceNone && r.Title == NothingFound) {
		r.Description = NoDescription
	}
	if r.Rating == "" {
		r.Rating = Missing
	}
	if r.Genre == "" {
		r.Genre = Missing
	}
	if r.Year == "" {
		r.Year = Missing
	}
	if r.Runtime == "" {
		r.Runtime = Missing
	}
	return r
}

// NotFoundRecord is returned when no upstream contributed anything
func NotFoundRecord() MovieRecord {
	return MovieRecord{
		Title:       NothingFound,
		Description: "",
		Genre:       Missing,
		Year:        Missing,
		Runtime:     Missing,
		Rating:      Missing,
		Source:      SourceNone,
	}
}

// CacheKey normalizes a raw query into the result cache key
func CacheKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
