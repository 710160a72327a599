// Package apify provides a client for the Apify actor API used to scrape
// Instagram posts.
//
// The flow mirrors the actor API: start a run for a batch of post URLs,
// poll the run at a fixed interval until it reaches a terminal status, then
// fetch the result items from the run's default dataset. The wait is
// modeled as an explicit state machine (submitted, polling, succeeded,
// failed, timed_out) with an injectable sleep so tests can run it
// instantly.
package apify
