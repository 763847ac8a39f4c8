package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func testClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent:      "test-agent",
		RequestTimeout: 5 * time.Second,
		SessionMaxAge:  time.Hour,
	}
}

func Test_Client_SuccessfulGet(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://example.com/jobs" &&
			req.Header.Get("User-Agent") == "test-agent"
	})).Return(response(200, "<html>jobs</html>"), nil)

	client := NewClient(testClientConfig())
	client.SetSessionFactory(func() HTTPClient { return mockClient })

	page, err := client.Get(context.Background(), "https://example.com/jobs", Options{})
	require.NoError(t, err)
	assert.Equal(t, 200, page.StatusCode)
	assert.Equal(t, "<html>jobs</html>", page.Body)
}

func Test_Client_TwoForbiddenRotatesSessionAndRetries(t *testing.T) {

	blocked := &mockHTTPClient{}
	blocked.On("Do", mock.Anything).Return(response(403, "blocked"), nil)

	fresh := &mockHTTPClient{}
	fresh.On("Do", mock.Anything).Return(response(200, "ok"), nil)

	factoryCalls := 0
	client := NewClient(testClientConfig())
	client.SetSessionFactory(func() HTTPClient {
		factoryCalls++
		if factoryCalls == 1 {
			return blocked
		}
		return fresh
	})

	// first 403 starts the counter and surfaces as a status error
	_, err := client.Get(context.Background(), "https://example.com/jobs", Options{})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 403, statusErr.Code)
	assert.Equal(t, 1, factoryCalls)

	// second 403 within the window triggers rotation and one retry
	page, err := client.Get(context.Background(), "https://example.com/jobs", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ok", page.Body)
	assert.Equal(t, 2, factoryCalls)
}

func Test_Client_SuccessResetsForbiddenCounter(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(response(403, ""), nil).Once()
	mockClient.On("Do", mock.Anything).Return(response(200, "ok"), nil).Once()
	mockClient.On("Do", mock.Anything).Return(response(403, ""), nil).Once()

	factoryCalls := 0
	client := NewClient(testClientConfig())
	client.SetSessionFactory(func() HTTPClient {
		factoryCalls++
		return mockClient
	})

	_, err := client.Get(context.Background(), "https://example.com/a", Options{})
	assert.Error(t, err)

	_, err = client.Get(context.Background(), "https://example.com/b", Options{})
	assert.NoError(t, err)

	// counter was reset, so this 403 is the first of a new streak
	_, err = client.Get(context.Background(), "https://example.com/c", Options{})
	assert.Error(t, err)
	assert.Equal(t, 1, factoryCalls)
}

func Test_Client_TooManyRequestsReturnsSentinel(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(response(429, ""), nil)

	client := NewClient(testClientConfig())
	client.SetSessionFactory(func() HTTPClient { return mockClient })

	_, err := client.Get(context.Background(), "https://example.com/jobs", Options{})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func Test_Client_ExtraHeadersAreSent(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("Cookie") == "consent=1"
	})).Return(response(200, "ok"), nil)

	client := NewClient(testClientConfig())
	client.SetSessionFactory(func() HTTPClient { return mockClient })

	_, err := client.Get(context.Background(), "https://example.com", Options{
		Headers: map[string]string{"Cookie": "consent=1"},
	})
	assert.NoError(t, err)
}

type stubFetcher struct {
	page *Page
	err  error
}

func (s *stubFetcher) Get(_ context.Context, _ string, _ Options) (*Page, error) {
	return s.page, s.err
}

func Test_FallbackFetcher_UsesSecondaryOnPrimaryFailure(t *testing.T) {

	primary := &stubFetcher{err: &StatusError{Code: 403}}
	secondary := &stubFetcher{page: &Page{StatusCode: 200, Body: "via proxy"}}

	fetcher := NewFallbackFetcher(primary, secondary)
	page, err := fetcher.Get(context.Background(), "https://example.com", Options{})
	require.NoError(t, err)
	assert.Equal(t, "via proxy", page.Body)
}

func Test_FallbackFetcher_RateLimitSkipsFallback(t *testing.T) {

	primary := &stubFetcher{err: ErrRateLimited}
	secondary := &stubFetcher{page: &Page{StatusCode: 200}}

	fetcher := NewFallbackFetcher(primary, secondary)
	_, err := fetcher.Get(context.Background(), "https://example.com", Options{})
	assert.ErrorIs(t, err, ErrRateLimited)
}
