package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/retry"
)

// ErrNotFound is returned when the server has no such document
var ErrNotFound = errors.New("document not found")

// HTTPSource fetches documents from <baseURL>/<name>
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	breaker    *gobreaker.CircuitBreaker
	retry      *retry.Policy
}

// HTTPOption configures an HTTPSource
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithRetry replaces the default retry policy
func WithRetry(p *retry.Policy) HTTPOption {
	return func(s *HTTPSource) {
		if p != nil {
			s.retry = p
		}
	}
}

// NewHTTPSource creates a source for baseURL (e.g. "https://example.com/data")
func NewHTTPSource(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (compatible; StandingsDashboard/1.0)",
		retry:     retry.NewPolicy(3, 500*time.Millisecond),
	}
	for _, opt := range opts {
		opt(s)
	}

	st := gobreaker.Settings{Name: "documents:" + s.baseURL}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	// A missing document is an answer, not an outage
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotFound)
	}
	s.breaker = gobreaker.NewCircuitBreaker(st)

	return s
}

// Fetch retrieves and decodes one document
func (s *HTTPSource) Fetch(ctx context.Context, name string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, name)

	var doc map[string]interface{}
	err := s.retry.Execute(ctx, func(ctx context.Context) error {
		result, err := s.breaker.Execute(func() (interface{}, error) {
			return s.get(ctx, url)
		})
		if errors.Is(err, ErrNotFound) || errors.Is(err, gobreaker.ErrOpenState) {
			return retry.Permanent(err)
		}
		if err != nil {
			return err
		}
		doc = result.(map[string]interface{})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	return doc, nil
}

// State reports the breaker state for health output
func (s *HTTPSource) State() string {
	return s.breaker.State().String()
}

func (s *HTTPSource) get(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("data server error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result == nil {
		return nil, errors.New("document is not a JSON object")
	}

	return result, nil
}
