// Package client talks to the pizza backend over its REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// DefaultReadTimeout bounds GET requests when no timeout is configured
const DefaultReadTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is kept in a StatusError
const maxErrorBody = 512

// StatusError is returned for any non-2xx response
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client is a pizza store backed by the REST API. Reads are bounded by the
// read timeout; writes only by the caller's context.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	readTimeout time.Duration
	tokens      oauth2.TokenSource
	log         logrus.FieldLogger

	clientID     string
	clientSecret string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithReadTimeout sets the timeout applied to read requests
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// WithCredentials makes the client obtain bearer tokens with the OAuth2
// client credentials grant before writing
func WithCredentials(clientID, clientSecret string) Option {
	return func(c *Client) {
		c.clientID, c.clientSecret = clientID, clientSecret
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		readTimeout: DefaultReadTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clientID != "" {
		c.tokens = newTokenSource(c.httpClient, c.baseURL, c.clientID, c.clientSecret)
	}
	return c
}

// ListPizzas fetches every pizza with GET /api/pizzas
func (c *Client) ListPizzas(ctx context.Context) ([]models.Pizza, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	var pizzas []models.Pizza
	if err := c.do(ctx, http.MethodGet, "/api/pizzas", nil, false, &pizzas); err != nil {
		return nil, err
	}
	return pizzas, nil
}

// GetPizza fetches one pizza with GET /api/pizzas/{id}
func (c *Client) GetPizza(ctx context.Context, id int) (models.Pizza, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	var pizza models.Pizza
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pizzas/%d", id), nil, false, &pizza); err != nil {
		return models.Pizza{}, err
	}
	return pizza, nil
}

// UpdatePizza sends the full pizza with PUT /api/pizzas/{id}
func (c *Client) UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	var updated models.Pizza
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/pizzas/%d", pizza.ID), pizza, true, &updated); err != nil {
		return models.Pizza{}, err
	}
	return updated, nil
}

// ListBases fetches the pizza bases with GET /api/bases
func (c *Client) ListBases(ctx context.Context) ([]models.Base, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	var bases []models.Base
	if err := c.do(ctx, http.MethodGet, "/api/bases", nil, false, &bases); err != nil {
		return nil, err
	}
	return bases, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		token, err := c.bearerToken()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Pizza API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, url, err)
	}
	return nil
}
