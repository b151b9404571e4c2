// Package suggest calls the external AI endpoint for colour swatches and
// product copy.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrNotConfigured = errors.New("ai endpoint is not configured")
	hexColor         = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

type ColorSuggestion struct {
	Name      string `json:"name"`
	ColorCode string `json:"colorCode"`
}

type DescriptionRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords,omitempty"`
}

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name:        "ai",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[suggest] circuit %s: %s -> %s", name, from, to)
		},
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		cb:       gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// ColorFor asks for a swatch for a colour name such as "Navy Blue".
func (c *Client) ColorFor(ctx context.Context, name string) (ColorSuggestion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ColorSuggestion{}, apperr.Validation("name", "colour name is required")
	}

	body, err := c.post(ctx, "/color", map[string]string{"name": name})
	if err != nil {
		return ColorSuggestion{}, err
	}

	var resp struct {
		ColorCode string `json:"colorCode"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ColorSuggestion{}, apperr.Network("decode colour suggestion", err)
	}
	if !hexColor.MatchString(resp.ColorCode) {
		return ColorSuggestion{}, apperr.Network("decode colour suggestion", fmt.Errorf("invalid colour code %q", resp.ColorCode))
	}
	return ColorSuggestion{Name: name, ColorCode: strings.ToUpper(resp.ColorCode)}, nil
}

func (c *Client) Description(ctx context.Context, req DescriptionRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "", apperr.Validation("name", "product name is required")
	}

	body, err := c.post(ctx, "/description", req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperr.Network("decode description", err)
	}
	return strings.TrimSpace(resp.Description), nil
}

// post runs one request through the breaker. Caller cancellation is passed
// through untouched and does not count against the breaker.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.endpoint == "" {
		return nil, apperr.Network("ai request", ErrNotConfigured)
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal ai request: %w", err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("ai endpoint returned %d", resp.StatusCode)
		}
		return data, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperr.Network("ai request "+path, err)
	}
	return body, nil
}
