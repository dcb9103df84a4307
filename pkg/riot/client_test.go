package riot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "riotstats/pkg/errors"
	"riotstats/pkg/logger"
)

const testAPIKey = "RGAPI-secret-key-abcdef-123456"

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
	calls   int
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.handler(req)
}

// waitRecorder captures retry sleeps instead of actually sleeping
type waitRecorder struct {
	delays []time.Duration
}

func (w *waitRecorder) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.delays = append(w.delays, d)
	return nil
}

// timeoutError mimics a net-level timeout
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(t *testing.T, handler func(req *http.Request) (*http.Response, error)) (*Client, *mockRoundTripper, *waitRecorder) {
	t.Helper()

	client, err := NewClient(testAPIKey, Options{
		Region:           "na1",
		DisableRateLimit: true,
		Logger:           logger.NewTestLogger(),
	})
	require.NoError(t, err)

	rt := &mockRoundTripper{handler: handler}
	client.httpClient = &http.Client{Transport: rt}

	rec := &waitRecorder{}
	client.wait = rec.wait

	return client, rt, rec
}

func TestNewClientInvalidRegion(t *testing.T) {
	_, err := NewClient(testAPIKey, Options{Region: "mars1", Logger: logger.NewTestLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mars1")
	assert.Contains(t, err.Error(), "na1")
	assert.Contains(t, err.Error(), "euw1")
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(testAPIKey, Options{Logger: logger.NewTestLogger()})
	require.NoError(t, err)

	assert.Equal(t, "na1", client.Region())
	assert.Equal(t, DefaultMaxRetries, client.maxRetries)
	assert.NotNil(t, client.limiter)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestExecuteSuccessNoSleeps(t *testing.T) {
	client, rt, rec := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, testAPIKey, req.Header.Get("X-Riot-Token"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		return newResponse(200, `{"puuid":"abc","gameName":"Doublelift","tagLine":"NA1"}`), nil
	})

	account, err := client.AccountByRiotID(context.Background(), "Doublelift", "NA1")
	require.NoError(t, err)

	assert.Equal(t, "abc", account.PUUID)
	assert.Equal(t, "Doublelift", account.GameName)
	assert.Equal(t, 1, rt.calls)
	assert.Empty(t, rec.delays)
}

func TestExecuteRateLimitedRetriesForFree(t *testing.T) {
	calls := 0
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		calls++
		if calls <= 2 {
			resp := newResponse(429, "")
			resp.Header.Set("Retry-After", "3")
			return resp, nil
		}
		return newResponse(200, `["NA1_1","NA1_2"]`), nil
	})
	// a single-slot budget proves 429 retries do not consume it
	client.maxRetries = 1

	ids, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{Count: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"NA1_1", "NA1_2"}, ids)
	assert.Equal(t, 3, rt.calls)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, rec.delays)
}

func TestExecuteRateLimitedDefaultDelay(t *testing.T) {
	calls := 0
	client, _, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return newResponse(429, ""), nil
		}
		return newResponse(200, `[]`), nil
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Second}, rec.delays)
}

func TestExecuteServerErrorExhaustsBudget(t *testing.T) {
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(503, "service unavailable"), nil
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindServerError))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, rt.calls)
	// exponential backoff between attempts, none after the final one
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, rec.delays)
}

func TestExecuteTimeoutExhaustsBudget(t *testing.T) {
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, timeoutError{}
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindTimeout))
	assert.Equal(t, 3, rt.calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, rec.delays)
}

// clientTimeoutError mimics the error http.Client returns when its
// overall Timeout expires: it reports Timeout() and, like the real one
// since Go 1.23, unwraps to context.DeadlineExceeded.
type clientTimeoutError struct{}

func (clientTimeoutError) Error() string {
	return "Client.Timeout exceeded while awaiting headers"
}
func (clientTimeoutError) Timeout() bool { return true }
func (clientTimeoutError) Unwrap() error { return context.DeadlineExceeded }

func TestExecuteClientTimeoutConsumesBudget(t *testing.T) {
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, clientTimeoutError{}
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindTimeout))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, rt.calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, rec.delays)
}

func TestExecuteConnectionErrorIsTerminal(t *testing.T) {
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connect: connection refused")
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindNetwork))
	assert.Equal(t, 1, rt.calls)
	assert.Empty(t, rec.delays)
}

func TestExecuteServerErrorThenSuccess(t *testing.T) {
	calls := 0
	client, _, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return newResponse(500, "oops"), nil
		}
		return newResponse(200, `[]`), nil
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{1 * time.Second}, rec.delays)
}

func TestExecuteNotFoundIsImmediate(t *testing.T) {
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(404, ""), nil
	})

	_, err := client.Match(context.Background(), "NA1_404")
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
	assert.Equal(t, 1, rt.calls)
	assert.Empty(t, rec.delays)
}

func TestExecuteForbiddenMasksKey(t *testing.T) {
	client, rt, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(403, "forbidden"), nil
	})

	_, err := client.Match(context.Background(), "NA1_1")
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
	assert.Equal(t, 1, rt.calls)
	assert.NotContains(t, err.Error(), testAPIKey)
	assert.Contains(t, err.Error(), testAPIKey[:10])
}

func TestExecuteUnexpectedStatus(t *testing.T) {
	client, rt, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(418, "short and stout"), nil
	})

	_, err := client.Match(context.Background(), "NA1_1")
	require.Error(t, err)

	assert.True(t, apierrors.IsKind(err, apierrors.KindUnexpected))
	assert.Contains(t, err.Error(), "418")
	assert.Contains(t, err.Error(), "short and stout")
	assert.Equal(t, 1, rt.calls)
	assert.Empty(t, rec.delays)
}

func TestExecuteIdempotent(t *testing.T) {
	client, _, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(200, `{"puuid":"p1","gameName":"A","tagLine":"B"}`), nil
	})

	first, err := client.AccountByRiotID(context.Background(), "A", "B")
	require.NoError(t, err)
	second, err := client.AccountByRiotID(context.Background(), "A", "B")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExecuteAcquiresLimiterPerAttempt(t *testing.T) {
	client, _, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(503, ""), nil
	})

	limiter := &countingLimiter{}
	client.limiter = limiter

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.Error(t, err)
	assert.Equal(t, 3, limiter.acquired)
}

type countingLimiter struct{ acquired int }

func (c *countingLimiter) Acquire() { c.acquired++ }
func (c *countingLimiter) Reset()   {}

func TestExecuteCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client, _, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		cancel()
		return newResponse(503, ""), nil
	})

	_, err := client.MatchIDs(ctx, "puuid", MatchIDsQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestMatchIDsMalformedResult(t *testing.T) {
	client, _, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(200, `{"not":"a list"}`), nil
	})

	_, err := client.MatchIDs(context.Background(), "puuid", MatchIDsQuery{})
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindMalformed))
}

func TestRankedEntriesObjectBodyIsEmpty(t *testing.T) {
	client, _, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(200, `{"status":{"message":"whoops"}}`), nil
	})

	entries, err := client.RankedEntries(context.Background(), "summoner-id")
	require.NoError(t, err)
	assert.Empty(t, entries)

	log := client.logger.(*logger.TestLogger)
	assert.True(t, log.HasMessage("WARN", "expected a list of ranked entries"))
}

func TestRankedEntriesList(t *testing.T) {
	client, _, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return newResponse(200, `[{"queueType":"RANKED_SOLO_5x5","tier":"DIAMOND","rank":"II","wins":120,"losses":100}]`), nil
	})

	entries, err := client.RankedEntries(context.Background(), "summoner-id")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DIAMOND", entries[0].Tier)
	assert.Equal(t, 120, entries[0].Wins)
}

func TestRecentMatchesSkipsFailedMatches(t *testing.T) {
	client, _, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/riot/account/v1/accounts/by-riot-id/Doublelift/NA1":
			return newResponse(200, `{"puuid":"p1","gameName":"Doublelift","tagLine":"NA1"}`), nil
		case req.URL.Path == "/lol/match/v5/matches/by-puuid/p1/ids":
			return newResponse(200, `["NA1_1","NA1_2","NA1_3"]`), nil
		case req.URL.Path == "/lol/match/v5/matches/NA1_2":
			return newResponse(404, ""), nil
		default:
			return newResponse(200, `{"metadata":{"matchId":"`+req.URL.Path[len("/lol/match/v5/matches/"):]+`"},"info":{"gameMode":"CLASSIC"}}`), nil
		}
	})

	matches, err := client.RecentMatches(context.Background(), "Doublelift", "NA1", 3)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "NA1_1", matches[0].Metadata.MatchID)
	assert.Equal(t, "NA1_3", matches[1].Metadata.MatchID)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "**********", maskKey("short"))
	masked := maskKey(testAPIKey)
	assert.Equal(t, testAPIKey[:10]+"...", masked)
	assert.NotContains(t, masked, testAPIKey[10:])
}

func TestRetryAfterHeader(t *testing.T) {
	h := make(http.Header)
	assert.Equal(t, 5*time.Second, retryAfter(h))

	h.Set("Retry-After", "12")
	assert.Equal(t, 12*time.Second, retryAfter(h))

	h.Set("Retry-After", "soon")
	assert.Equal(t, 5*time.Second, retryAfter(h))
}
