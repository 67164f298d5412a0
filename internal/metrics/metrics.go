package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search request outcomes
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Image cache lookup results
const (
	ImageHit      = "hit"
	ImageMiss     = "miss"
	ImageRejected = "rejected"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storehelper_search_requests_total",
			Help: "Search API calls by final outcome",
		},
		[]string{"outcome"},
	)

	SearchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storehelper_search_retries_total",
			Help: "Search API retries caused by HTTP 429",
		},
	)

	ImageLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storehelper_image_lookups_total",
			Help: "Image cache lookups by result",
		},
		[]string{"result"},
	)

	ImageDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storehelper_image_downloads_total",
			Help: "Image downloads by outcome, after retries",
		},
		[]string{"outcome"},
	)

	ItemsNormalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storehelper_items_normalized_total",
			Help: "Search result items turned into products",
		},
	)

	ItemsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storehelper_items_skipped_total",
			Help: "Search result items dropped during normalization",
		},
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storehelper_catalog_products",
			Help: "Unique products in the last rendered catalog",
		},
	)
)

// Handler exposes the default registry for a gin route
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
