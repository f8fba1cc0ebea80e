package estateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
)

const (
	pathSearch   = "/get_properties"
	pathInterest = "/submit_interest"
	pathVisit    = "/book_visit"

	maxErrorBody = 2048
)

// Client talks to the listings backend over JSON/HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, opts ...func(*Client)) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithTimeout(d time.Duration) func(*Client) {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// StatusError is a non-2xx answer that carried no usable JSON body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

func (c *Client) SearchListings(ctx context.Context, budget float64) ([]domain.Listing, error) {
	resp, err := c.post(ctx, pathSearch, map[string]float64{"budget": budget})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, statusError(resp)
	}
	var listings []domain.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, errors.Wrap(err, "decode listings")
	}
	return listings, nil
}

func (c *Client) SubmitInterest(ctx context.Context, req domain.InterestRequest) (domain.SubmitResult, error) {
	return c.submit(ctx, pathInterest, req)
}

func (c *Client) BookVisit(ctx context.Context, req domain.VisitRequest) (domain.SubmitResult, error) {
	return c.submit(ctx, pathVisit, req)
}

// submit honours a {status,message} body whatever the HTTP status; the backend reports
// validation and lookup failures that way.
func (c *Client) submit(ctx context.Context, path string, payload any) (domain.SubmitResult, error) {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.SubmitResult{}, errors.Wrapf(err, "read %s response", path)
	}
	var res domain.SubmitResult
	if err := json.Unmarshal(body, &res); err != nil || res.Status == "" {
		if resp.StatusCode/100 != 2 {
			return domain.SubmitResult{}, &StatusError{Code: resp.StatusCode, Body: truncate(string(body))}
		}
		if err == nil {
			err = errors.New("missing status field")
		}
		return domain.SubmitResult{}, errors.Wrapf(err, "decode %s response", path)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", path)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: truncate(string(body))}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
