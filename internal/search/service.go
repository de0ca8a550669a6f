package search

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/varoOP/kinobot/internal/domain"
	"github.com/varoOP/kinobot/internal/extract"
	"github.com/varoOP/kinobot/internal/logger"
)

// LinkSearcher finds a page for title on site
type LinkSearcher interface {
	SearchLink(ctx context.Context, title, site string) (string, bool)
}

// MovieDatabase looks a title up in a movie catalog
type MovieDatabase interface {
	Lookup(ctx context.Context, title string) (domain.MovieRecord, bool)
}

// PageFetcher downloads raw HTML
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// PageExtractor turns HTML into a title and description
type PageExtractor interface {
	Extract(html []byte, query string) extract.Page
}

// Service resolves a free-text title into a fully populated record
type Service interface {
	SearchMovieInfo(ctx context.Context, title string) (domain.MovieRecord, error)
}

// service aggregates the upstreams for one title.
//
// Two concurrent misses on the same key both query the upstreams and both
// write the cache; the last write wins. Records for a key are equivalent,
// so the duplicate work is tolerated rather than coordinated.
type service struct {
	log          zerolog.Logger
	cache        domain.ResultCache
	sites        LinkSearcher
	movies       MovieDatabase
	pages        PageFetcher
	extractor    PageExtractor
	primarySite  string
	fallbackSite string
	now          func() time.Time
}

func NewService(log zerolog.Logger, config *domain.Config, cache domain.ResultCache, sites LinkSearcher, movies MovieDatabase, pages PageFetcher, extractor PageExtractor) Service {
	return &service{
		log:          log.With().Str("module", "search").Logger(),
		cache:        cache,
		sites:        sites,
		movies:       movies,
		pages:        pages,
		extractor:    extractor,
		primarySite:  config.PrimarySite,
		fallbackSite: config.FallbackSite,
		now:          time.Now,
	}
}

// SearchMovieInfo returns a fully populated record for title. Upstream
// failures only degrade the record; an error means the caller's context
// ended or a lookup panicked, and nothing is cached in that case.
func (s *service) SearchMovieInfo(ctx context.Context, title string) (domain.MovieRecord, error) {
	query := strings.TrimSpace(title)
	key := domain.CacheKey(title)

	ctx, requestID := logger.WithRequestID(ctx)
	log := s.log.With().Str("request_id", requestID).Str("key", key).Logger()

	if rec, ok := s.cache.Get(key); ok {
		log.Debug().Msg("serving from cache")
		return rec, nil
	}

	started := time.Now()
	r, err := s.lookup(ctx, query)
	if err != nil {
		return domain.MovieRecord{}, err
	}

	if NeedsPage(r) {
		html, err := s.pages.Fetch(ctx, r.PrimaryLink)
		if err != nil {
			log.Warn().Err(err).Str("link", r.PrimaryLink).Msg("failed to fetch page, using fallbacks")
		}
		r.Page = s.extractor.Extract(html, query)
	}

	if err := ctx.Err(); err != nil {
		return domain.MovieRecord{}, err
	}

	rec := Merge(query, r)
	rec.CachedAt = s.now()
	s.cache.Put(key, rec)

	log.Info().
		Str("source", string(rec.Source)).
		Str("title", rec.Title).
		Bool("has_link", rec.Link != "").
		Dur("took", time.Since(started)).
		Msg("aggregated movie info")

	return rec, nil
}

// lookup runs the three upstream calls concurrently and waits for all of them
func (s *service) lookup(ctx context.Context, query string) (Results, error) {
	var (
		r  Results
		wg conc.WaitGroup
	)

	wg.Go(func() {
		if link, ok := s.sites.SearchLink(ctx, query, s.primarySite); ok {
			r.PrimaryLink = link
		}
	})
	wg.Go(func() {
		if link, ok := s.sites.SearchLink(ctx, query, s.fallbackSite); ok {
			r.FallbackLink = link
		}
	})
	wg.Go(func() {
		r.Movie, r.HasMovie = s.movies.Lookup(ctx, query)
	})

	if recovered := wg.WaitAndRecover(); recovered != nil {
		return Results{}, errors.Wrap(recovered.AsError(), "upstream lookup panicked")
	}

	if err := ctx.Err(); err != nil {
		return Results{}, err
	}

	return r, nil
}
