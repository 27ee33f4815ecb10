package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRuns counts ingestion runs, labeled by outcome.
	TotalRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_runs_total",
		Help: "The total number of notification ingestion runs.",
	}, []string{"result"})
	// TotalSent counts successful push deliveries, labeled by notification type.
	TotalSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_sent_total",
		Help: "The total number of notifications delivered.",
	}, []string{"type"})
	// TotalFailed counts failed push deliveries, labeled by reason.
	TotalFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_failed_total",
		Help: "The total number of failed push deliveries.",
	}, []string{"reason"})
	// TotalExpired counts subscriptions cleaned up after a 410 response.
	TotalExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_subscriptions_expired_total",
		Help: "The total number of push subscriptions removed as gone.",
	})
)
