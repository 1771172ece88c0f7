package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// TokenSource supplies the bearer token attached to every backend request.
// The checkout core never builds or parses tokens itself.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed, already-issued token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Client is the JSON client for the APPECOMM backend. Backend calls run
// through a circuit breaker so a dead backend fails fast instead of piling
// up timed-out requests.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("api: base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("api: token source is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "appecomm-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		breaker: breaker,
	}, nil
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// errorBody covers the shapes the backend uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Get decodes a plain (non-enveloped) JSON response into out.
func (c *Client) Get(ctx context.Context, path, rawQuery string, out any) error {
	return c.do(ctx, http.MethodGet, path, rawQuery, nil, out)
}

func (c *Client) Post(ctx context.Context, path, rawQuery string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, rawQuery, in, out)
}

func (c *Client) Put(ctx context.Context, path, rawQuery string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, rawQuery, in, out)
}

// GetData unwraps the backend's {message, data} envelope into out.
func (c *Client) GetData(ctx context.Context, path, rawQuery string, out any) error {
	var env envelope
	if err := c.do(ctx, http.MethodGet, path, rawQuery, nil, &env); err != nil {
		return err
	}
	return decodeData(env, out)
}

func (c *Client) PostData(ctx context.Context, path, rawQuery string, in, out any) error {
	var env envelope
	if err := c.do(ctx, http.MethodPost, path, rawQuery, in, &env); err != nil {
		return err
	}
	return decodeData(env, out)
}

func (c *Client) PutData(ctx context.Context, path, rawQuery string, in, out any) error {
	var env envelope
	if err := c.do(ctx, http.MethodPut, path, rawQuery, in, &env); err != nil {
		return err
	}
	return decodeData(env, out)
}

func decodeData(env envelope, out any) error {
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return domain.NewError(domain.KindServer, "response has no data field", nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domain.NewError(domain.KindServer, fmt.Sprintf("malformed response data: %v", err), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, rawQuery string, in, out any) error {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return domain.NewError(domain.KindValidation, fmt.Sprintf("encode request body: %v", err), err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return domain.NewError(domain.KindValidation, fmt.Sprintf("build request: %v", err), err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return domain.NewError(domain.KindValidation, "no auth token available", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, errDo := c.http.Do(req)
		if errDo != nil {
			return nil, errDo
		}
		if r.StatusCode >= http.StatusInternalServerError {
			// count 5xx as breaker failures, but hand the response back for decoding
			return r, fmt.Errorf("server status %d", r.StatusCode)
		}
		return r, nil
	})
	if err != nil {
		if resp == nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return domain.NewError(domain.KindNetwork, "backend unavailable (circuit open)", err)
			}
			return domain.NewError(domain.KindNetwork, fmt.Sprintf("%s %s: %v", method, path, err), err)
		}
		// fall through with the 5xx response so the server message survives
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return serverError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewError(domain.KindServer, fmt.Sprintf("decode response: %v", err), err)
	}
	return nil
}

// serverError surfaces the backend message verbatim; it is never flattened
// into a generic string that hides the code.
func serverError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var eb errorBody
	message := ""
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			message = eb.Message
		} else if eb.Error != "" {
			message = eb.Error
		}
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	e := domain.NewError(domain.KindServer, message, nil)
	e.Code = eb.Code
	if e.Code == "" {
		e.Code = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	return e
}
