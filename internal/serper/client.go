package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/logger"
	"golang.org/x/net/idna"
)

// Client performs site-restricted web searches against the Serper API
type Client struct {
	log        zerolog.Logger
	apiKey     string
	endpoint   string
	httpClient *http.Client

	missingKey sync.Once
}

type searchRequest struct {
	Q string `json:"q"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

type organicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// NewClient creates a client. An empty apiKey makes every search come back absent.
func NewClient(log zerolog.Logger, apiKey, endpoint string, timeout time.Duration) *Client {
	return &Client{
		log:        log.With().Str("module", "serper").Logger(),
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchLink returns the first organic result whose link contains site.
// Any failure is logged and reported as absent.
func (c *Client) SearchLink(ctx context.Context, title, site string) (string, bool) {
	log := c.log.With().Str("request_id", logger.RequestID(ctx)).Str("site", site).Logger()

	if c.apiKey == "" {
		c.missingKey.Do(func() {
			c.log.Warn().Msg("serper api key is not set, site search disabled")
		})
		return "", false
	}

	res, err := c.search(ctx, fmt.Sprintf("%s site:%s", title, site))
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("serper search failed")
		return "", false
	}

	link, ok := firstMatch(res, site)
	if !ok {
		log.Debug().Str("title", title).Int("results", len(res.Organic)).Msg("no matching link")
		return "", false
	}

	log.Info().Str("title", title).Str("link", link).Msg("found link")
	return link, true
}

func (c *Client) search(ctx context.Context, query string) (*searchResponse, error) {
	payload, err := json.Marshal(searchRequest{Q: query})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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

	res := &searchResponse{}
	if err := json.Unmarshal(body, res); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	return res, nil
}

// firstMatch picks the first link that mentions site, in its
// Unicode or punycode spelling.
func firstMatch(res *searchResponse, site string) (string, bool) {
	needles := []string{site}
	if ascii, err := idna.Lookup.ToASCII(site); err == nil && ascii != site {
		needles = append(needles, ascii)
	}

	for _, r := range res.Organic {
		for _, n := range needles {
			if n != "" && strings.Contains(r.Link, n) {
				return r.Link, true
			}
		}
	}
	return "", false
}
