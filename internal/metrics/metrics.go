// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EmbedOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildhub_embed_operations_total",
	Help: "Embed create, update and delete operations by outcome",
}, []string{"op", "outcome"})

var ConfigUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildhub_config_updates_total",
	Help: "Guild configuration section writes by outcome",
}, []string{"section", "outcome"})

var GuildsTotal = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "guildhub_guilds_total",
	Help: "Guilds the bot is currently in",
})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildhub_http_requests_total",
	Help: "Dashboard requests by route and status code",
}, []string{"route", "code"})

// Outcome labels a finished operation from the error it returned.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
