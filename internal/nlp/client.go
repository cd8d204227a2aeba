package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/mlahtinen/gumshoe/internal/errors"
)

// Engine identifiers accepted by the analysis endpoint. The hf engine runs the
// real models; dummy is the sidecar's degraded heuristic that works without them.
const (
	EngineHF    = "hf"
	EngineDummy = "dummy"
)

// ErrBadStatus is returned when the sidecar answers with a non-200 status.
var ErrBadStatus = errors.NewSentinel("nlp sidecar returned bad status")

// Client talks to the NLP sidecar that hosts the sentence-similarity model and
// the play-log analysis. Both calls are bounded by a request timeout, rate
// limited, and similarity results are cached per pair set so that repeated
// evidence fragments do not hammer the sidecar.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	requestTimeout := 10 * time.Second
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(20), 20),
		cache:   cache.New(10*time.Minute, 15*time.Minute),
		logger:  logger.With("source", "nlp.Client"),
	}
}

// AnalyzeRequest asks the sidecar to grade a finished play session. Facts is
// capped to 12 entries by the caller.
type AnalyzeRequest struct {
	SessionID   int64          `json:"session_id"`
	LogJSON     map[string]any `json:"logJson"`
	CaseTitle   string         `json:"caseTitle,omitempty"`
	CaseSummary string         `json:"caseSummary,omitempty"`
	Facts       []string       `json:"facts,omitempty"`
	FinalAnswer map[string]any `json:"finalAnswer,omitempty"`
	Timings     map[string]any `json:"timings,omitempty"`
	Engine      string         `json:"engine"`
}

// AnalyzeResponse carries the graded skills. The sidecar reports floats; the
// scoring package coerces them into the five clamped integers.
type AnalyzeResponse struct {
	Engine     string             `json:"engine"`
	Skills     map[string]float64 `json:"skills"`
	Submetrics map[string]float64 `json:"submetrics,omitempty"`
}

// Similarity computes semantic similarity for the given text pairs. Any subset
// of pairs is allowed; the response contains the matching sim_* keys. Errors
// surface to the caller, which converts them to zero-score defaults.
func (c *Client) Similarity(ctx context.Context, pairs map[string]string) (map[string]float64, error) {
	key := cacheKey(pairs)
	if cached, ok := c.cache.Get(key); ok {
		if sims, ok := cached.(map[string]float64); ok {
			return sims, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "similarity rate limit wait")
	}

	var sims map[string]float64
	if err := c.post(ctx, "/nlp/similarity", pairs, &sims); err != nil {
		return nil, errors.Wrap(err, "similarity request")
	}

	c.cache.SetDefault(key, sims)
	return sims, nil
}

// Analyze grades a finished session with the requested engine.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "analyze rate limit wait")
	}

	var resp AnalyzeResponse
	path := fmt.Sprintf("/nlp/analyze?engine=%s", req.Engine)
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, errors.Wrap(err, "analyze request", slog.String("engine", req.Engine))
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute request")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("close response body", errors.SlogError(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return errors.Wrap(ErrBadStatus, "unexpected status",
			slog.Int("status", resp.StatusCode), slog.String("path", path))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// cacheKey builds a deterministic key from the pair set.
func cacheKey(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\x1f')
		b.WriteString(pairs[k])
		b.WriteByte('\x1e')
	}
	return b.String()
}
