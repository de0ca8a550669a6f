package scrape

import (
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/logger"
)

const maxBodySize = 4 << 20

// Fetcher downloads a single HTML page with a randomized user agent
type Fetcher struct {
	log       zerolog.Logger
	timeout   time.Duration
	transport http.RoundTripper
}

// NewFetcher creates a fetcher whose requests are bounded by timeout
func NewFetcher(log zerolog.Logger, timeout time.Duration) *Fetcher {
	return &Fetcher{
		log:     log.With().Str("module", "scrape").Logger(),
		timeout: timeout,
	}
}

// WithTransport overrides the HTTP transport used by the collector
func (f *Fetcher) WithTransport(rt http.RoundTripper) *Fetcher {
	f.transport = rt
	return f
}

// Fetch returns the body of pageURL. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodySize),
	)
	extensions.RandomUserAgent(c)
	c.SetRequestTimeout(timeout)
	if f.transport != nil {
		c.WithTransport(f.transport)
	}

	var (
		body   []byte
		status int
	)

	c.OnRequest(func(r *colly.Request) {
		f.log.Debug().Str("request_id", logger.RequestID(ctx)).Str("url", r.URL.String()).Msg("visiting")
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s (status %d)", pageURL, status)
	}

	f.log.Info().Str("request_id", logger.RequestID(ctx)).Str("url", pageURL).Int("status", status).Int("bytes", len(body)).Msg("fetched page")
	return body, nil
}
