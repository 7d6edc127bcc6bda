package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog/log"
)

const defaultClientTimeout = 10 * time.Second

// Client talks to a dialin server's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses one with a
// 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Field      string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("server returned %d: %s (field %s)", e.StatusCode, e.Message, e.Field)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Recipe asks the server for a recipe via GET /api/recipes.
func (c *Client) Recipe(ctx context.Context, req models.RecipeRequest) (*models.Recipe, error) {
	values, err := query.Values(req)
	if err != nil {
		return nil, fmt.Errorf("encode recipe query: %w", err)
	}

	var out models.Recipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes?"+values.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DialIn asks the server for dial-in advice via POST /api/dial-in.
func (c *Client) DialIn(ctx context.Context, req models.DialInRequest) (*models.DialInAdvice, error) {
	var out models.DialInAdvice
	if err := c.do(ctx, http.MethodPost, "/api/dial-in", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Grinders lists the server's grinder table, filtered by search when it is
// not empty.
func (c *Client) Grinders(ctx context.Context, search string) ([]grinder.Profile, error) {
	path := "/api/grinders"
	if search != "" {
		path += "?" + url.Values{"q": {search}}.Encode()
	}

	var out struct {
		Grinders []grinder.Profile `json:"grinders"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Grinders, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("url", req.URL.String()).Msg("Calling dialin server")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().Int("status", resp.StatusCode).Str("url", req.URL.String()).Msg("Server responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
