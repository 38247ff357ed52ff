package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncWaitlistSignup is a no-op.
func (n *NoopRecorder) IncWaitlistSignup(result string) {}

// IncAdminLogin is a no-op.
func (n *NoopRecorder) IncAdminLogin(status string) {}

// IncBlogMutation is a no-op.
func (n *NoopRecorder) IncBlogMutation(op string) {}

// IncCheckoutSession is a no-op.
func (n *NoopRecorder) IncCheckoutSession(status string) {}

// IncCatalogSync is a no-op.
func (n *NoopRecorder) IncCatalogSync(status string) {}

// ObserveCatalogSyncDuration is a no-op.
func (n *NoopRecorder) ObserveCatalogSyncDuration(duration time.Duration) {}

// IncCatalogRefresh is a no-op.
func (n *NoopRecorder) IncCatalogRefresh() {}
