package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// ErrProxyFailed signals that the challenge-solving proxy could not produce
// a usable page, either transport-wise or via a non-ok envelope.
var ErrProxyFailed = errors.New("challenge proxy failed")

type proxyRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int    `json:"maxTimeout"`
}

type proxySolution struct {
	Status   int               `json:"status"`
	Response string            `json:"response"`
	Headers  map[string]string `json:"headers"`
}

type proxyResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Solution *proxySolution `json:"solution"`
}

// ProxyClient fetches pages through a FlareSolverr instance, which runs a
// real browser to pass anti-bot challenges.
type ProxyClient struct {
	endpoint   string
	maxTimeout time.Duration
	httpClient HTTPClient
}

func NewProxyClient(endpoint string, maxTimeout time.Duration) *ProxyClient {
	if maxTimeout <= 0 {
		maxTimeout = 60 * time.Second
	}
	return &ProxyClient{
		endpoint:   endpoint,
		maxTimeout: maxTimeout,
		httpClient: &http.Client{Timeout: maxTimeout + 10*time.Second},
	}
}

func (c *ProxyClient) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *ProxyClient) Get(ctx context.Context, url string, _ Options) (*Page, error) {

	payload, err := json.Marshal(proxyRequest{
		Cmd:        "request.get",
		URL:        url,
		MaxTimeout: int(c.maxTimeout.Milliseconds()),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrProxyFailed, "transport error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrProxyFailed, "proxy returned status %d", resp.StatusCode)
	}

	var envelope proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrapf(ErrProxyFailed, "malformed envelope: %v", err)
	}

	if envelope.Status != "ok" || envelope.Solution == nil {
		return nil, errors.Wrapf(ErrProxyFailed, "envelope status %q: %s", envelope.Status, envelope.Message)
	}

	headers := http.Header{}
	for key, value := range envelope.Solution.Headers {
		headers.Set(key, value)
	}

	return &Page{
		StatusCode: envelope.Solution.Status,
		Body:       envelope.Solution.Response,
		Headers:    headers,
	}, nil
}
