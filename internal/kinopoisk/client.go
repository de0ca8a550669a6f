package kinopoisk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/domain"
	"github.com/varoOP/kinobot/internal/logger"
)

const searchPath = "/api/v2.1/films/search-by-keyword"

// Client looks titles up in the unofficial Kinopoisk API
type Client struct {
	log        zerolog.Logger
	apiKey     string
	baseURL    string
	httpClient *http.Client

	missingKey sync.Once
}

type SearchResponse struct {
	Keyword          string `json:"keyword"`
	PagesCount       int    `json:"pagesCount"`
	SearchFilmsCount int    `json:"searchFilmsCount"`
	Films            []Film `json:"films"`
}

type Film struct {
	FilmID      int        `json:"filmId"`
	NameRu      string     `json:"nameRu"`
	NameEn      string     `json:"nameEn"`
	Type        string     `json:"type"`
	Year        flexString `json:"year"`
	Description string     `json:"description"`
	FilmLength  flexString `json:"filmLength"`
	Genres      []struct {
		Genre string `json:"genre"`
	} `json:"genres"`
	Rating    flexString `json:"rating"`
	PosterURL string     `json:"posterUrl"`
}

// flexString accepts a JSON string, number or null.
// The API is not consistent about which one it sends.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v == "null" {
			v = ""
		}
		*f = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// NewClient creates a client. An empty apiKey makes every lookup come back absent.
func NewClient(log zerolog.Logger, apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:        log.With().Str("module", "kinopoisk").Logger(),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup returns the first film matching title as a partial record.
// ok is false when the key is missing, the request fails or nothing matched.
func (c *Client) Lookup(ctx context.Context, title string) (domain.MovieRecord, bool) {
	log := c.log.With().Str("request_id", logger.RequestID(ctx)).Str("title", title).Logger()

	if c.apiKey == "" {
		c.missingKey.Do(func() {
			c.log.Warn().Msg("kinopoisk api key is not set, movie database disabled")
		})
		return domain.MovieRecord{}, false
	}

	res, err := c.search(ctx, title)
	if err != nil {
		log.Warn().Err(err).Msg("kinopoisk lookup failed")
		return domain.MovieRecord{}, false
	}

	if len(res.Films) == 0 {
		log.Debug().Msg("kinopoisk returned no films")
		return domain.MovieRecord{}, false
	}

	film := res.Films[0]
	log.Info().Int("film_id", film.FilmID).Msg("found film")
	return film.Record(), true
}

// Record maps a film into the normalized record shape
func (f Film) Record() domain.MovieRecord {
	genres := make([]string, 0, len(f.Genres))
	for _, g := range f.Genres {
		if g.Genre != "" {
			genres = append(genres, g.Genre)
		}
	}

	r := domain.MovieRecord{
		Title:       firstNonEmpty(f.NameRu, f.NameEn),
		Description: firstNonEmpty(f.Description, domain.NoDescription),
		Rating:      firstNonEmpty(string(f.Rating), domain.NoRating),
		Genre:       firstNonEmpty(strings.Join(genres, ", "), domain.NoGenre),
		Year:        firstNonEmpty(string(f.Year), domain.NoYear),
		Runtime:     firstNonEmpty(string(f.FilmLength), domain.Missing),
		Poster:      f.PosterURL,
		Source:      domain.SourceKinopoisk,
	}
	return r
}

func (c *Client) search(ctx context.Context, title string) (*SearchResponse, error) {
	u, err := url.Parse(c.baseURL + searchPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse url")
	}
	query := u.Query()
	query.Set("keyword", title)
	query.Set("page", "1")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	res := &SearchResponse{}
	if err := json.Unmarshal(body, res); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
