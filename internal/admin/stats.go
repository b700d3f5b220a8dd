package admin

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Details   string `json:"details"`
}

// Health status values reported for upstream systems.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
	HealthDown     = "down"
)

// SystemHealth reports the workflow engine and Stripe status.
type SystemHealth struct {
	WorkflowStatus  string `json:"n8nStatus"`
	StripeStatus    string `json:"stripeStatus"`
	LastHealthCheck string `json:"lastHealthCheck"`
}

// TierDistribution counts subscriptions per tier.
type TierDistribution struct {
	Starter int `json:"starter"`
	Pro     int `json:"pro"`
	Premium int `json:"premium"`
}

// Stats is the platform-wide dashboard payload.
type Stats struct {
	TotalUsers          int              `json:"totalUsers"`
	ActiveSubscriptions int              `json:"activeSubscriptions"`
	TotalRevenue        float64          `json:"totalRevenue"`
	SearchesThisMonth   int              `json:"searchesThisMonth"`
	LeadsGenerated      int              `json:"leadsGenerated"`
	RecentActivity      []Activity       `json:"recentActivity"`
	SystemHealth        SystemHealth     `json:"systemHealth"`
	TierDistribution    TierDistribution `json:"tierDistribution"`
}
