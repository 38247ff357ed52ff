// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Label values shared by recorders and the exposition handler.
const (
	SignupCreated   = "created"
	SignupDuplicate = "duplicate"
	SignupInvalid   = "invalid"

	BlogCreated = "created"
	BlogUpdated = "updated"
	BlogDeleted = "deleted"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Waitlist metrics
	IncWaitlistSignup(result string) // result: "created", "duplicate", "invalid"

	// Admin metrics
	IncAdminLogin(status string) // status: "success" or "failed"
	IncBlogMutation(op string)   // op: "created", "updated", "deleted"

	// Payment metrics
	IncCheckoutSession(status string) // status: "success" or "failed"
	IncCatalogSync(status string)     // status: "success" or "failed"
	ObserveCatalogSyncDuration(duration time.Duration)
	IncCatalogRefresh() // on-demand mirror refresh after a plan miss
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
