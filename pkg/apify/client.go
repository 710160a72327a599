package apify

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

	"igtracker/pkg/config"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
	"igtracker/pkg/retry"
)

// pollState models the synchronous wait for a run to reach a terminal state
type pollState string

const (
	stateSubmitted pollState = "submitted"
	statePolling   pollState = "polling"
	stateSucceeded pollState = "succeeded"
	stateFailed    pollState = "failed"
	stateTimedOut  pollState = "timed_out"
)

// Client talks to the Apify actor API: start a run, poll it to a terminal
// status, fetch the resulting dataset.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	token           string
	actor           string
	resultsLimit    int
	skipPinnedPosts bool
	pollInterval    time.Duration
	maxPollAttempts int
	maxRetries      int
	sleep           func(time.Duration)
	logger          logger.Logger
}

// NewClient creates an actor API client from configuration
func NewClient(cfg *config.ApifyConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	actor := cfg.Actor
	if actor == "" {
		actor = DefaultActor
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:         baseURL,
		token:           cfg.Token,
		actor:           actor,
		resultsLimit:    cfg.ResultsLimit,
		skipPinnedPosts: cfg.SkipPinnedPosts,
		pollInterval:    cfg.PollInterval,
		maxPollAttempts: cfg.MaxPollAttempts,
		maxRetries:      cfg.MaxRetries,
		sleep:           time.Sleep,
		logger:          log,
	}
}

// SetSleep replaces the wait function between poll attempts (used by tests)
func (c *Client) SetSleep(fn func(time.Duration)) {
	c.sleep = fn
}

// Scrape runs the actor for the given post URLs and blocks until the
// results are available. There is no cancellation once the run is
// submitted; a timeout here only means this caller stopped waiting.
func (c *Client) Scrape(urls []string) ([]Item, error) {
	runID, err := c.Submit(urls)
	if err != nil {
		return nil, err
	}
	return c.AwaitResult(runID)
}

// Submit starts an actor run for the given URLs and returns the run ID
func (c *Client) Submit(urls []string) (string, error) {
	input := RunInput{
		ResultsLimit:    c.resultsLimit,
		SkipPinnedPosts: c.skipPinnedPosts,
		Usernames:       urls,
	}

	body, err := json.Marshal(input)
	if err != nil {
		return "", errs.New(errs.ErrorTypeSubmission, "failed to encode actor input: %v", err)
	}

	c.logger.InfoWithFields("submitting actor run", map[string]interface{}{
		"actor":     c.actor,
		"url_count": len(urls),
	})

	var run runResponse
	op := func() error {
		resp, err := c.httpClient.Post(c.endpoint(ActorRunsPath(c.actor)), "application/json", bytes.NewReader(body))
		if err != nil {
			return errs.New(errs.ErrorTypeNetwork, "actor run request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			if errs.IsRetryableStatusCode(resp.StatusCode) {
				return errs.NewWithCode(errs.ErrorTypeNetwork, resp.StatusCode, "actor run request failed")
			}
			return errs.NewWithCode(errs.ErrorTypeSubmission, resp.StatusCode, "actor run rejected")
		}

		return decodeJSON(resp.Body, &run)
	}

	if err := retry.Do(op, c.retryConfig()); err != nil {
		return "", submissionError(err)
	}

	if run.Data.ID == "" || run.Data.DefaultDatasetID == "" {
		return "", errs.New(errs.ErrorTypeSubmission, "actor run could not be started")
	}

	c.logger.InfoWithFields("actor run submitted", map[string]interface{}{
		"run_id": run.Data.ID,
		"status": run.Data.Status,
	})

	return run.Data.ID, nil
}

// AwaitResult polls the run until it reaches a terminal state and fetches
// the dataset items on success. The wait is a fixed-interval blocking loop;
// a poll attempt that fails at the transport level is logged and counted,
// not fatal.
func (c *Client) AwaitResult(runID string) ([]Item, error) {
	state := stateSubmitted
	attempt := 0
	datasetID := ""

	for {
		switch state {
		case stateSubmitted:
			state = statePolling

		case statePolling:
			if attempt >= c.maxPollAttempts {
				state = stateTimedOut
				continue
			}
			c.sleep(c.pollInterval)
			attempt++

			run, err := c.runStatus(runID)
			if err != nil {
				c.logger.WarnWithFields("poll attempt failed", map[string]interface{}{
					"run_id":  runID,
					"attempt": attempt,
					"error":   err.Error(),
				})
				continue
			}

			c.logger.DebugWithFields("actor run status", map[string]interface{}{
				"run_id":  runID,
				"attempt": attempt,
				"status":  run.Status,
			})

			switch run.Status {
			case StatusSucceeded:
				datasetID = run.DefaultDatasetID
				state = stateSucceeded
			case StatusFailed, StatusAborted:
				state = stateFailed
			}

		case stateSucceeded:
			return c.DatasetItems(datasetID)

		case stateFailed:
			return nil, errs.New(errs.ErrorTypeJobFailed, "actor run %s failed or was aborted", runID)

		case stateTimedOut:
			return nil, errs.New(errs.ErrorTypeTimeout,
				"timed out waiting for actor run %s after %d attempts", runID, attempt)
		}
	}
}

// DatasetItems fetches the items of a finished run's dataset
func (c *Client) DatasetItems(datasetID string) ([]Item, error) {
	var items []Item

	op := func() error {
		resp, err := c.httpClient.Get(c.endpoint(DatasetItemsPath(datasetID)))
		if err != nil {
			return errs.New(errs.ErrorTypeNetwork, "dataset request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if errs.IsRetryableStatusCode(resp.StatusCode) {
				return errs.NewWithCode(errs.ErrorTypeNetwork, resp.StatusCode, "dataset request failed")
			}
			return errs.NewWithCode(errs.ErrorTypeJobFailed, resp.StatusCode, "dataset not available")
		}

		items = items[:0]
		return decodeJSON(resp.Body, &items)
	}

	if err := retry.Do(op, c.retryConfig()); err != nil {
		return nil, err
	}

	c.logger.InfoWithFields("dataset fetched", map[string]interface{}{
		"dataset_id": datasetID,
		"item_count": len(items),
	})

	return items, nil
}

// runStatus fetches the current state of an actor run
func (c *Client) runStatus(runID string) (*RunData, error) {
	resp, err := c.httpClient.Get(c.endpoint(RunPath(runID)))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, "run status request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewWithCode(errs.ErrorTypeNetwork, resp.StatusCode, "run status request failed")
	}

	var run runResponse
	if err := decodeJSON(resp.Body, &run); err != nil {
		return nil, err
	}
	return &run.Data, nil
}

// endpoint builds a full API URL with the token appended
func (c *Client) endpoint(path string) string {
	params := url.Values{}
	params.Set("token", c.token)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

func (c *Client) retryConfig() *retry.Config {
	return &retry.Config{
		MaxAttempts: c.maxRetries,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     context.Background(),
		Logger:      c.logger,
	}
}

func decodeJSON(r io.Reader, target interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return errs.New(errs.ErrorTypeNetwork, "failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errs.New(errs.ErrorTypeParsing, "failed to parse JSON: %v", err)
	}
	return nil
}

func submissionError(err error) error {
	var typed *errs.Error
	if errors.As(err, &typed) && typed.Type == errs.ErrorTypeSubmission {
		return err
	}
	return errs.New(errs.ErrorTypeSubmission, "actor run could not be submitted: %v", err)
}
