// Package nominatim is a client for the OpenStreetMap Nominatim geocoder.
// Calls are throttled to the configured rate, bounded by a timeout, retried
// with backoff on transient failures, de-duplicated while in flight and
// cached when a cache is configured.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"globe_backend/internal/geo"
	"globe_backend/platform/apperr"
	"globe_backend/platform/cache"
	"globe_backend/platform/config"
	"globe_backend/platform/logger"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	serviceName = "nominatim"
	// maxBodyBytes caps how much of an upstream body is read.
	maxBodyBytes = 2 << 20
)

// Client talks to a Nominatim instance.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
	searchLimit    int
	reverseZoom    int
	maxRetries     uint64
	retryBase      time.Duration
	limiter        *rate.Limiter
	cache          cache.Cache
	cacheTTL       time.Duration
	group          singleflight.Group
	log            *logger.Logger
}

// NewClient builds a client from cfg. store may be nil to disable caching.
func NewClient(cfg config.NominatimConfig, store cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Client {
	if store == nil {
		store = cache.Nop{}
	}

	limit := rate.Inf
	if r := cfg.GetNominatimRateLimit(); r > 0 {
		limit = rate.Limit(r)
	}

	retries := cfg.GetNominatimMaxRetries()
	if retries < 0 {
		retries = 0
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.GetNominatimTimeout()},
		baseURL:        strings.TrimRight(cfg.GetNominatimBaseURL(), "/"),
		userAgent:      cfg.GetNominatimUserAgent(),
		acceptLanguage: cfg.GetNominatimAcceptLanguage(),
		timeout:        cfg.GetNominatimTimeout(),
		searchLimit:    cfg.GetNominatimSearchLimit(),
		reverseZoom:    cfg.GetNominatimReverseZoom(),
		maxRetries:     uint64(retries),
		retryBase:      250 * time.Millisecond,
		limiter:        rate.NewLimiter(limit, 1),
		cache:          store,
		cacheTTL:       cacheTTL,
		log:            log,
	}
}

// Reverse resolves a coordinate to a display name and address components.
func (c *Client) Reverse(ctx context.Context, at geo.Coordinate) (Place, error) {
	key := fmt.Sprintf("reverse:%s:%d:%.5f:%.5f", c.acceptLanguage, c.reverseZoom, at.Lat, at.Lon)

	v, err := c.shared(ctx, key, "reverse", func(ctx context.Context) (interface{}, error) {
		var place Place
		if c.cacheGet(ctx, key, &place) {
			return place, nil
		}

		params := url.Values{}
		params.Set("format", "json")
		params.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
		params.Set("zoom", strconv.Itoa(c.reverseZoom))
		params.Set("addressdetails", "1")

		var raw reverseResponse
		if err := c.fetch(ctx, "reverse", params, &raw); err != nil {
			return Place{}, err
		}

		place, err := toPlace(raw, at)
		if err != nil {
			return Place{}, err
		}

		c.cacheSet(ctx, key, place)
		return place, nil
	})
	if err != nil {
		return Place{}, err
	}
	return v.(Place), nil
}

// Search runs a free-text forward lookup and returns up to the configured
// number of candidates. An empty result set is a LocationNotFound error and
// is not cached.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apperr.MissingParameter("missing search query parameter 'q'")
	}

	key := fmt.Sprintf("search:%s:%d:%s", c.acceptLanguage, c.searchLimit, strings.ToLower(q))

	v, err := c.shared(ctx, key, "search", func(ctx context.Context) (interface{}, error) {
		var candidates []Candidate
		if c.cacheGet(ctx, key, &candidates) {
			return candidates, nil
		}

		params := url.Values{}
		params.Set("q", q)
		params.Set("format", "json")
		params.Set("limit", strconv.Itoa(c.searchLimit))
		params.Set("addressdetails", "1")

		var raw []searchResult
		if err := c.fetch(ctx, "search", params, &raw); err != nil {
			return nil, err
		}

		candidates = toCandidates(raw, c.searchLimit)
		if len(candidates) > 0 {
			c.cacheSet(ctx, key, candidates)
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}

	candidates := v.([]Candidate)
	if len(candidates) == 0 {
		return nil, apperr.LocationNotFound(fmt.Sprintf("no location found for %q", q))
	}
	return candidates, nil
}

// shared runs fn once for all concurrent callers of key. fn gets a context
// detached from any single caller and bounded by the full retry budget, so a
// caller that goes away does not fail the others. Each caller still stops
// waiting as soon as its own ctx is done.
func (c *Client) shared(ctx context.Context, key, endpoint string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.budget())
		defer cancel()
		return fn(callCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, apperr.UpstreamUnavailable("geocoding request cancelled before completion", ctx.Err()).WithOp(endpoint)
	}
}

// budget is the longest a shared call may take: every attempt hitting its
// timeout plus the backoff between attempts.
func (c *Client) budget() time.Duration {
	shift := c.maxRetries
	if shift > 10 {
		shift = 10
	}
	attempts := time.Duration(c.maxRetries + 1)
	return attempts*c.timeout + c.retryBase*time.Duration((1<<shift)-1)
}

// fetch performs GET {baseURL}/{endpoint}?params and decodes the JSON body
// into dst, retrying transport errors, 429 and 5xx responses.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, dst interface{}) error {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		return c.attempt(ctx, endpoint, reqURL, attempt, dst)
	})
	if err == nil {
		return nil
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return domainErr.WithOp(endpoint)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.UpstreamUnavailable("geocoding service timed out", err).WithOp(endpoint)
	}
	return apperr.UpstreamUnavailable("geocoding service unavailable", err).WithOp(endpoint)
}

func (c *Client) attempt(ctx context.Context, endpoint, reqURL string, attempt int, dst interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Wait fails immediately when no token frees up before the deadline.
	if err := c.limiter.Wait(ctx); err != nil {
		c.log.UpstreamCall(serviceName, endpoint, 0, 0, attempt, err)
		return apperr.UpstreamUnavailable("geocoding service is busy, try again later", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamCall(serviceName, endpoint, 0, time.Since(start), attempt, err)
		return retry.RetryableError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.log.UpstreamCall(serviceName, endpoint, resp.StatusCode, time.Since(start), attempt, err)
		return retry.RetryableError(err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		c.log.UpstreamCall(serviceName, endpoint, resp.StatusCode, time.Since(start), attempt, statusErr)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(statusErr)
		}
		return apperr.UpstreamUnavailable("geocoding service rejected the request", statusErr)
	}

	c.log.UpstreamCall(serviceName, endpoint, resp.StatusCode, time.Since(start), attempt, nil)

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.UpstreamMalformed("geocoding service returned an unreadable response", err)
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	found, err := c.cache.Get(ctx, key, dst)
	if err != nil {
		c.log.Warn("geocode cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (c *Client) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := c.cache.Set(ctx, key, value, c.cacheTTL); err != nil {
		c.log.Warn("geocode cache write failed", "key", key, "error", err)
	}
}

func toPlace(raw reverseResponse, requested geo.Coordinate) (Place, error) {
	if raw.Error != "" {
		return Place{}, apperr.LocationNotFound("no location found at the requested coordinates").
			WithDetails(map[string]string{"upstream": raw.Error})
	}
	if strings.TrimSpace(raw.DisplayName) == "" {
		return Place{}, apperr.UpstreamMalformed("geocoding response is missing display_name", nil)
	}

	location := requested
	lat, latErr := strconv.ParseFloat(raw.Lat, 64)
	lon, lonErr := strconv.ParseFloat(raw.Lon, 64)
	if latErr == nil && lonErr == nil {
		location = geo.Coordinate{Lat: lat, Lon: lon}
	}

	return Place{
		DisplayName: raw.DisplayName,
		Location:    location,
		Address:     raw.Address,
	}, nil
}

func toCandidates(raw []searchResult, limit int) []Candidate {
	candidates := make([]Candidate, 0, len(raw))
	for _, r := range raw {
		candidate, ok := toCandidate(r)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
		if limit > 0 && len(candidates) == limit {
			break
		}
	}
	return candidates
}

func toCandidate(r searchResult) (Candidate, bool) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Candidate{}, false
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Candidate{}, false
	}

	box := geo.BoundingBox{North: lat, South: lat, East: lon, West: lon}
	if len(r.BoundingBox) == 4 {
		parsed, ok := parseBoundingBox(r.BoundingBox)
		if ok {
			box = parsed
		}
	}

	return Candidate{
		Name:        r.DisplayName,
		Lat:         lat,
		Lon:         lon,
		BoundingBox: box,
	}, true
}

// parseBoundingBox reshapes Nominatim's [south, north, west, east] array.
func parseBoundingBox(raw []string) (geo.BoundingBox, bool) {
	var vals [4]float64
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return geo.BoundingBox{}, false
		}
		vals[i] = v
	}
	box := geo.BoundingBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}
	if box.South > box.North {
		box.South, box.North = box.North, box.South
	}
	if box.West > box.East {
		box.West, box.East = box.East, box.West
	}
	return box, true
}
