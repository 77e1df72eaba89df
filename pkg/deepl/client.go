package deepl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/jokeviewer/pkg/health"
	"github.com/dmitrymomot/jokeviewer/pkg/httpclient"
)

// DefaultBaseURL is the DeepL API Free endpoint.
const DefaultBaseURL = "https://api-free.deepl.com/v2"

// Language is a supported target language.
type Language struct {
	Code string `json:"language"`
	Name string `json:"name"`
}

// Client talks to the DeepL v2 REST API.
type Client struct {
	http    *httpclient.Client
	baseURL string
	authKey string
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

// WithAuthKey sets the key sent as "Authorization: DeepL-Auth-Key <key>".
func WithAuthKey(key string) Option {
	return func(c *Client) {
		c.authKey = key
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

// New creates a DeepL client.
func New(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New()
	}
	return c
}

// Languages returns the supported target languages.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/languages?type=target", nil)
		if err != nil {
			return nil, err
		}
		c.authorize(req)
		return req, nil
	})
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}

	var langs []Language
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	return langs, nil
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate translates texts into target. The result has the same length
// and order as texts.
func (c *Client) Translate(ctx context.Context, texts []string, target string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	form := url.Values{}
	form.Set("target_lang", target)
	for _, t := range texts {
		form.Add("text", t)
	}
	payload := form.Encode()

	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", strings.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		c.authorize(req)
		return req, nil
	})
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}

	var resp translateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if len(resp.Translations) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrMismatch, len(texts), len(resp.Translations))
	}

	out := make([]string, len(resp.Translations))
	for i, tr := range resp.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

// Healthcheck returns a readiness check backed by the usage endpoint.
func (c *Client) Healthcheck() health.CheckFunc {
	return func(ctx context.Context) error {
		_, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/usage", nil)
			if err != nil {
				return nil, err
			}
			c.authorize(req)
			return req, nil
		})
		if err != nil {
			return errors.Join(ErrRequest, err)
		}
		return nil
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.authKey != "" {
		req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)
	}
}
