package apify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igtracker/pkg/config"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
)

// mockActorServer mimics the Apify actor API
type mockActorServer struct {
	server       *httptest.Server
	statusCalls  int32
	submitCalls  int32
	datasetCalls int32

	// polls before the run reports a terminal status
	pollsUntilDone int
	terminalStatus string
	failSubmit     bool
	items          []Item
}

func newMockActorServer() *mockActorServer {
	m := &mockActorServer{
		pollsUntilDone: 2,
		terminalStatus: StatusSucceeded,
		items: []Item{
			{
				InputURL:      "https://instagram.com/p/ABC",
				DisplayURL:    "http://img/x.jpg",
				ShortCode:     "ABC",
				Caption:       "hello",
				OwnerUsername: "someone",
				CommentsCount: 3,
			},
		},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/v2/acts/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.submitCalls, 1)
		if m.failSubmit {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(runResponse{Data: RunData{
			ID:               "run-1",
			Status:           StatusRunning,
			DefaultDatasetID: "ds-1",
		}})
	})

	mux.HandleFunc("/v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		calls := atomic.AddInt32(&m.statusCalls, 1)
		status := StatusRunning
		if int(calls) >= m.pollsUntilDone {
			status = m.terminalStatus
		}
		json.NewEncoder(w).Encode(runResponse{Data: RunData{
			ID:               "run-1",
			Status:           status,
			DefaultDatasetID: "ds-1",
		}})
	})

	mux.HandleFunc("/v2/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.datasetCalls, 1)
		json.NewEncoder(w).Encode(m.items)
	})

	m.server = httptest.NewServer(mux)
	return m
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client := NewClient(&config.ApifyConfig{
		Token:           "test-token",
		BaseURL:         serverURL,
		Actor:           "apify~instagram-post-scraper",
		ResultsLimit:    1,
		PollInterval:    5 * time.Second,
		MaxPollAttempts: 10,
		RequestTimeout:  5 * time.Second,
		MaxRetries:      1,
	}, logger.NewTestLogger())
	client.SetSleep(func(time.Duration) {})
	return client
}

func TestSubmitReturnsRunID(t *testing.T) {
	m := newMockActorServer()
	defer m.server.Close()

	client := newTestClient(t, m.server.URL)
	runID, err := client.Submit([]string{"https://instagram.com/p/ABC"})

	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.submitCalls))
}

func TestSubmitRejectedIsSubmissionError(t *testing.T) {
	m := newMockActorServer()
	defer m.server.Close()
	m.failSubmit = true

	client := newTestClient(t, m.server.URL)
	_, err := client.Submit([]string{"https://instagram.com/p/ABC"})

	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeSubmission, typed.Type)
}

func TestAwaitResultSucceeds(t *testing.T) {
	m := newMockActorServer()
	defer m.server.Close()
	m.pollsUntilDone = 3

	client := newTestClient(t, m.server.URL)
	items, err := client.AwaitResult("run-1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://instagram.com/p/ABC", items[0].InputURL)
	assert.Equal(t, "ABC", items[0].ShortCode)
	assert.Equal(t, 3, items[0].CommentsCount)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&m.statusCalls), int32(3))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.datasetCalls))
}

func TestAwaitResultJobFailed(t *testing.T) {
	for _, status := range []string{StatusFailed, StatusAborted} {
		t.Run(status, func(t *testing.T) {
			m := newMockActorServer()
			defer m.server.Close()
			m.pollsUntilDone = 1
			m.terminalStatus = status

			client := newTestClient(t, m.server.URL)
			_, err := client.AwaitResult("run-1")

			require.Error(t, err)
			typed, ok := err.(*errs.Error)
			require.True(t, ok)
			assert.Equal(t, errs.ErrorTypeJobFailed, typed.Type)
		})
	}
}

func TestAwaitResultTimesOut(t *testing.T) {
	m := newMockActorServer()
	defer m.server.Close()
	m.pollsUntilDone = 1000 // never reaches a terminal status

	client := newTestClient(t, m.server.URL)
	_, err := client.AwaitResult("run-1")

	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeTimeout, typed.Type)
	assert.Equal(t, int32(10), atomic.LoadInt32(&m.statusCalls))
}

func TestAwaitResultSurvivesTransientPollFailures(t *testing.T) {
	var statusCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		calls := atomic.AddInt32(&statusCalls, 1)
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(runResponse{Data: RunData{
			ID: "run-1", Status: StatusSucceeded, DefaultDatasetID: "ds-1",
		}})
	})
	mux.HandleFunc("/v2/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Item{{InputURL: "https://instagram.com/p/XYZ"}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	items, err := client.AwaitResult("run-1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&statusCalls))
}

func TestScrapeEndToEnd(t *testing.T) {
	m := newMockActorServer()
	defer m.server.Close()

	client := newTestClient(t, m.server.URL)
	items, err := client.Scrape([]string{"https://instagram.com/p/ABC"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "someone", items[0].OwnerUsername)
}

func TestEndpointCarriesToken(t *testing.T) {
	client := newTestClient(t, "https://api.example.com")
	url := client.endpoint(RunPath("r-9"))
	assert.Equal(t, "https://api.example.com/v2/actor-runs/r-9?token=test-token", url)
}
