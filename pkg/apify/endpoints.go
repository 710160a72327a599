package apify

import "fmt"

const (
	// DefaultBaseURL is the base URL for the Apify API
	DefaultBaseURL = "https://api.apify.com"

	// DefaultActor is the Instagram post scraping actor
	DefaultActor = "apify~instagram-post-scraper"
)

// ActorRunsPath returns the path for starting a run of the given actor
func ActorRunsPath(actor string) string {
	return fmt.Sprintf("/v2/acts/%s/runs", actor)
}

// RunPath returns the path for fetching an actor run by ID
func RunPath(runID string) string {
	return fmt.Sprintf("/v2/actor-runs/%s", runID)
}

// DatasetItemsPath returns the path for fetching the items of a dataset
func DatasetItemsPath(datasetID string) string {
	return fmt.Sprintf("/v2/datasets/%s/items", datasetID)
}
