package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"decorprice/internal"
	"decorprice/internal/config"
	"decorprice/internal/pricing"
)

// Client reads decor records from the catalog REST API. It implements
// pricing.Fetcher.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	normalizer *pricing.Normalizer
	log        zerolog.Logger
}

// StatusError is returned for a non-2xx response that was not retried.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("decor api error: status=%d body=%s", e.Status, e.Body)
}

func NewClient(cfg config.Config, normalizer *pricing.Normalizer, log zerolog.Logger) *Client {
	if normalizer == nil {
		normalizer = pricing.NewNormalizer(pricing.DefaultAliases())
	}
	if cfg.DecorEnrichConcurrent <= 0 {
		cfg.DecorEnrichConcurrent = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.DecorAPITimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.DecorAPIRateLimitRPS),
		normalizer: normalizer,
		log:        log.With().Str("component", "catalog.client").Logger(),
	}
}

// FetchRawByID returns nil, nil when the API has no decor with that id.
func (c *Client) FetchRawByID(ctx context.Context, id int) (internal.RawRecord, error) {
	body, err := c.fetchJSON(ctx, "DB/decors/get/"+strconv.Itoa(id), nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, errors.Wrapf(err, "decor %d", id)
	}
	raw, ok := asRecord(payload)
	if !ok {
		return nil, errors.Errorf("decor %d: expected an object, got %s", id, jsonKind(payload))
	}
	return raw, nil
}

// FetchRawByCategory asks the prices endpoint first. When it fails or
// returns nothing, the basic list endpoint is read and every row is enriched
// with its full record. An empty category selects the whole catalog.
func (c *Client) FetchRawByCategory(ctx context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if onlyAvailable {
		params.Set("available", "true")
	}
	params.Set("order_by", "MidPrice")
	params.Set("ascending", "true")

	body, err := c.fetchJSON(ctx, "DB/decors/prices", params)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn().Err(err).Str("category", category).Msg("prices endpoint failed, falling back to list")
	default:
		payload, decodeErr := decodePayload(body)
		if decodeErr == nil {
			if rows, ok := asRecordList(payload); ok && len(rows) > 0 {
				return rows, nil
			}
		}
		c.log.Debug().Str("category", category).Msg("prices endpoint returned no rows, falling back to list")
	}

	return c.listAndEnrich(ctx, category, onlyAvailable)
}

// FetchAll returns every decor the API knows about.
func (c *Client) FetchAll(ctx context.Context) ([]internal.RawRecord, error) {
	return c.FetchRawByCategory(ctx, "", false)
}

func (c *Client) listAndEnrich(ctx context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if onlyAvailable {
		params.Set("available", "true")
	}
	params.Set("order_by", "DecorName")
	params.Set("ascending", "true")

	body, err := c.fetchJSON(ctx, "DB/decors/list", params)
	if err != nil {
		return nil, err
	}
	payload, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	rows, ok := asRecordList(payload)
	if !ok {
		return nil, &pricing.MalformedCategoryFetchError{Category: category, Got: jsonKind(payload)}
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		if id, ok := c.normalizer.ID(row); ok {
			ids = append(ids, id)
		}
	}

	full := make([]internal.RawRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.DecorEnrichConcurrent)
	for i, id := range ids {
		g.Go(func() error {
			raw, err := c.FetchRawByID(gctx, id)
			if err != nil {
				return errors.Wrapf(err, "enrich decor %d", id)
			}
			full[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]internal.RawRecord, 0, len(full))
	for _, raw := range full {
		if raw == nil {
			continue
		}
		if category != "" {
			if got, ok := c.normalizer.Category(raw); ok && !strings.EqualFold(got, category) {
				continue
			}
		}
		out = append(out, raw)
	}

	c.log.Debug().
		Str("category", category).
		Int("listed", len(rows)).
		Int("enriched", len(out)).
		Msg("list fallback done")
	return out, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.DecorAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	maxAttempts := c.cfg.DecorAPIMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip, br")
		if token := strings.TrimSpace(c.cfg.DecorAPIToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if err := sleepBackoff(ctx, attempt, maxAttempts); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := readBody(resp)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("decor api status %d", resp.StatusCode)
				c.log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Str("endpoint", endpoint).Msg("retrying")
				if err := sleepBackoff(ctx, attempt, maxAttempts); err != nil {
					return nil, err
				}
				continue
			}
			return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("decor api request failed")
	}
	return nil, errors.Wrapf(lastErr, "%s after %d attempts", endpoint, maxAttempts)
}

func sleepBackoff(ctx context.Context, attempt, maxAttempts int) error {
	if attempt >= maxAttempts {
		return nil
	}
	backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
