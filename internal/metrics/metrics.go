package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsReportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_items_reported_total",
		Help: "Total number of found items reported.",
	})

	ClaimsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_claims_submitted_total",
		Help: "Total number of claim requests submitted.",
	})

	ModerationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_moderation_actions_total",
		Help: "Total number of moderation actions applied, by action.",
	},
		[]string{"action"},
	)

	DuplicateActionsSuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_duplicate_actions_suppressed_total",
		Help: "Total number of moderation actions that joined an identical in-flight action.",
	},
		[]string{"action"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_http_requests_total",
		Help: "Total number of HTTP requests, by method and status code.",
	},
		[]string{"method", "code"},
	)

	PhotosUploadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_photos_uploaded_total",
		Help: "Total number of photos stored, by backend.",
	},
		[]string{"backend"},
	)
)
