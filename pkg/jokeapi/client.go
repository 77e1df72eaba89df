package jokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/jokeviewer/pkg/health"
	"github.com/dmitrymomot/jokeviewer/pkg/httpclient"
)

// Defaults match the public JokeAPI v2 endpoint.
const (
	DefaultBaseURL = "https://v2.jokeapi.dev"
	DefaultAmount  = 10
	DefaultLang    = "en"
)

// DefaultBlacklist lists the flags excluded from every request.
var DefaultBlacklist = []string{"nsfw", "religious", "political", "racist", "sexist", "explicit"}

// Client fetches single-part jokes from JokeAPI.
type Client struct {
	http      *httpclient.Client
	baseURL   string
	lang      string
	blacklist []string
	amount    int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAmount sets how many jokes a batch holds.
func WithAmount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.amount = n
		}
	}
}

// WithLang sets the language jokes are requested in.
func WithLang(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.lang = lang
		}
	}
}

// WithBlacklist replaces the excluded flags.
func WithBlacklist(flags ...string) Option {
	return func(c *Client) {
		c.blacklist = flags
	}
}

// WithHTTPClient sets the transport.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a JokeAPI client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		amount:    DefaultAmount,
		lang:      DefaultLang,
		blacklist: DefaultBlacklist,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New()
	}
	return c
}

// Amount returns the configured batch size.
func (c *Client) Amount() int {
	return c.amount
}

// Lang returns the language jokes are requested in.
func (c *Client) Lang() string {
	return c.lang
}

type joke struct {
	Joke string `json:"joke"`
}

type response struct {
	Message string `json:"message"`
	Joke    string `json:"joke"`
	Jokes   []joke `json:"jokes"`
	Error   bool   `json:"error"`
}

// Jokes fetches one batch of joke texts in API order.
// An empty batch is not an error.
func (c *Client) Jokes(ctx context.Context) ([]string, error) {
	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jokesURL(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", ErrRequest, resp.Message)
	}

	// A single joke is returned inline when amount is 1.
	if len(resp.Jokes) == 0 && resp.Joke != "" {
		return []string{resp.Joke}, nil
	}

	texts := make([]string, 0, len(resp.Jokes))
	for _, j := range resp.Jokes {
		if j.Joke != "" {
			texts = append(texts, j.Joke)
		}
	}
	return texts, nil
}

// Healthcheck returns a readiness check that pings the API.
func (c *Client) Healthcheck() health.CheckFunc {
	return func(ctx context.Context) error {
		_, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
		})
		if err != nil {
			return errors.Join(ErrRequest, err)
		}
		return nil
	}
}

func (c *Client) jokesURL() string {
	q := url.Values{}
	q.Set("safe-mode", "true")
	if len(c.blacklist) > 0 {
		q.Set("blacklistFlags", strings.Join(c.blacklist, ","))
	}
	q.Set("type", "single")
	q.Set("amount", strconv.Itoa(c.amount))
	q.Set("lang", c.lang)
	return c.baseURL + "/joke/Any?" + q.Encode()
}
