package apify

// Item is one scraped post as returned by the actor's dataset. Field names
// follow the actor's JSON output.
type Item struct {
	InputURL       string `json:"inputUrl"`
	DisplayURL     string `json:"displayUrl"`
	ShortCode      string `json:"shortCode"`
	Caption        string `json:"caption"`
	OwnerUsername  string `json:"ownerUsername"`
	CommentsCount  int    `json:"commentsCount"`
	VideoViewCount int    `json:"videoViewCount"`
	VideoPlayCount int    `json:"videoPlayCount"`
	Timestamp      string `json:"timestamp"`
}

// RunInput is the actor input payload. The actor expects the post URLs in
// the "username" field.
type RunInput struct {
	ResultsLimit    int      `json:"resultsLimit"`
	SkipPinnedPosts bool     `json:"skipPinnedPosts"`
	Usernames       []string `json:"username"`
}

// Run statuses reported by the actor-runs API
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
)

// RunData is the relevant slice of an actor-run resource
type RunData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runResponse struct {
	Data RunData `json:"data"`
}
