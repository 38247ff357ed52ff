package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SignupsCreated   uint64
	SignupsDuplicate uint64
	SignupsInvalid   uint64

	AdminLoginsSucceeded uint64
	AdminLoginsFailed    uint64

	BlogPostsCreated uint64
	BlogPostsUpdated uint64
	BlogPostsDeleted uint64

	CheckoutSessionsCreated uint64
	CheckoutSessionsFailed  uint64

	CatalogSyncsSucceeded      uint64
	CatalogSyncsFailed         uint64
	CatalogSyncDurationCount   uint64
	CatalogSyncDurationTotalNs int64
	CatalogRefreshes           uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics
// endpoint and is used directly by tests.
type InMemoryRecorder struct {
	signupsCreated   uint64
	signupsDuplicate uint64
	signupsInvalid   uint64

	adminLoginsSucceeded uint64
	adminLoginsFailed    uint64

	blogPostsCreated uint64
	blogPostsUpdated uint64
	blogPostsDeleted uint64

	checkoutSessionsCreated uint64
	checkoutSessionsFailed  uint64

	catalogSyncsSucceeded      uint64
	catalogSyncsFailed         uint64
	catalogSyncDurationCount   uint64
	catalogSyncDurationTotalNs int64
	catalogRefreshes           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SignupsCreated:             atomic.LoadUint64(&m.signupsCreated),
		SignupsDuplicate:           atomic.LoadUint64(&m.signupsDuplicate),
		SignupsInvalid:             atomic.LoadUint64(&m.signupsInvalid),
		AdminLoginsSucceeded:       atomic.LoadUint64(&m.adminLoginsSucceeded),
		AdminLoginsFailed:          atomic.LoadUint64(&m.adminLoginsFailed),
		BlogPostsCreated:           atomic.LoadUint64(&m.blogPostsCreated),
		BlogPostsUpdated:           atomic.LoadUint64(&m.blogPostsUpdated),
		BlogPostsDeleted:           atomic.LoadUint64(&m.blogPostsDeleted),
		CheckoutSessionsCreated:    atomic.LoadUint64(&m.checkoutSessionsCreated),
		CheckoutSessionsFailed:     atomic.LoadUint64(&m.checkoutSessionsFailed),
		CatalogSyncsSucceeded:      atomic.LoadUint64(&m.catalogSyncsSucceeded),
		CatalogSyncsFailed:         atomic.LoadUint64(&m.catalogSyncsFailed),
		CatalogSyncDurationCount:   atomic.LoadUint64(&m.catalogSyncDurationCount),
		CatalogSyncDurationTotalNs: atomic.LoadInt64(&m.catalogSyncDurationTotalNs),
		CatalogRefreshes:           atomic.LoadUint64(&m.catalogRefreshes),
	}
}

// IncWaitlistSignup increments the signup counter for result.
func (m *InMemoryRecorder) IncWaitlistSignup(result string) {
	switch result {
	case SignupCreated:
		atomic.AddUint64(&m.signupsCreated, 1)
	case SignupDuplicate:
		atomic.AddUint64(&m.signupsDuplicate, 1)
	case SignupInvalid:
		atomic.AddUint64(&m.signupsInvalid, 1)
	}
}

// IncAdminLogin increments the login counter for status.
func (m *InMemoryRecorder) IncAdminLogin(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.adminLoginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.adminLoginsFailed, 1)
}

// IncBlogMutation increments the counter for op.
func (m *InMemoryRecorder) IncBlogMutation(op string) {
	switch op {
	case BlogCreated:
		atomic.AddUint64(&m.blogPostsCreated, 1)
	case BlogUpdated:
		atomic.AddUint64(&m.blogPostsUpdated, 1)
	case BlogDeleted:
		atomic.AddUint64(&m.blogPostsDeleted, 1)
	}
}

// IncCheckoutSession increments the checkout counter for status.
func (m *InMemoryRecorder) IncCheckoutSession(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.checkoutSessionsCreated, 1)
		return
	}
	atomic.AddUint64(&m.checkoutSessionsFailed, 1)
}

// IncCatalogSync increments the sync counter for status.
func (m *InMemoryRecorder) IncCatalogSync(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.catalogSyncsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.catalogSyncsFailed, 1)
}

// ObserveCatalogSyncDuration records sync duration.
func (m *InMemoryRecorder) ObserveCatalogSyncDuration(duration time.Duration) {
	atomic.AddUint64(&m.catalogSyncDurationCount, 1)
	atomic.AddInt64(&m.catalogSyncDurationTotalNs, duration.Nanoseconds())
}

// IncCatalogRefresh increments the on-demand refresh counter.
func (m *InMemoryRecorder) IncCatalogRefresh() {
	atomic.AddUint64(&m.catalogRefreshes, 1)
}
