package backend

// SearchPayload is the body of the "start" operation.
type SearchPayload struct {
	Industry  string   `json:"industry"`
	Location  string   `json:"location"`
	Radius    int      `json:"radius"`
	LeadCount int      `json:"leadCount"`
	Keywords  []string `json:"keywords"`
}

// StageUpdate is the body of the "update" operation.
type StageUpdate struct {
	LeadID string `json:"leadId"`
	Stage  string `json:"stage"`
}

// CheckoutRequest is the body of the "checkout" operation.
type CheckoutRequest struct {
	PriceID    string `json:"priceId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// JobStatus is the "status" operation response for a background search.
type JobStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
	Message     string `json:"message"`
	CreatedAt   string `json:"createdAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Job statuses reported by the workflow.
const (
	JobSearching = "searching"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

type urlResponse struct {
	URL string `json:"url"`
}
