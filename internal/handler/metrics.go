package handler

import (
	"fmt"
	"net/http"

	"github.com/envis/envis/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "envis_waitlist_signups_total{result=\"created\"} %d\n", snap.SignupsCreated)
	writeMetric(w, "envis_waitlist_signups_total{result=\"duplicate\"} %d\n", snap.SignupsDuplicate)
	writeMetric(w, "envis_waitlist_signups_total{result=\"invalid\"} %d\n", snap.SignupsInvalid)

	writeMetric(w, "envis_admin_logins_total{status=\"success\"} %d\n", snap.AdminLoginsSucceeded)
	writeMetric(w, "envis_admin_logins_total{status=\"failed\"} %d\n", snap.AdminLoginsFailed)

	writeMetric(w, "envis_blog_mutations_total{op=\"created\"} %d\n", snap.BlogPostsCreated)
	writeMetric(w, "envis_blog_mutations_total{op=\"updated\"} %d\n", snap.BlogPostsUpdated)
	writeMetric(w, "envis_blog_mutations_total{op=\"deleted\"} %d\n", snap.BlogPostsDeleted)

	writeMetric(w, "envis_checkout_sessions_total{status=\"success\"} %d\n", snap.CheckoutSessionsCreated)
	writeMetric(w, "envis_checkout_sessions_total{status=\"failed\"} %d\n", snap.CheckoutSessionsFailed)

	writeMetric(w, "envis_catalog_syncs_total{status=\"success\"} %d\n", snap.CatalogSyncsSucceeded)
	writeMetric(w, "envis_catalog_syncs_total{status=\"failed\"} %d\n", snap.CatalogSyncsFailed)
	writeMetric(w, "envis_catalog_sync_duration_seconds_count %d\n", snap.CatalogSyncDurationCount)
	writeMetric(w, "envis_catalog_sync_duration_seconds_sum %.6f\n", float64(snap.CatalogSyncDurationTotalNs)/1e9)
	writeMetric(w, "envis_catalog_refreshes_total %d\n", snap.CatalogRefreshes)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
