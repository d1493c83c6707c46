package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Message metrics
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_messages_received_total",
		Help: "Total number of messages received",
	}, []string{"chat_type"})

	intentsMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_intents_matched_total",
		Help: "Total number of matched message intents",
	}, []string{"intent"})

	// Command metrics
	commandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_commands_executed_total",
		Help: "Total number of commands executed",
	}, []string{"command"})

	// COVID dataset metrics
	covidLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "telegram_bot_covid_lookup_duration_seconds",
		Help:    "Duration of COVID dataset lookups",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	covidLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_covid_lookups_total",
		Help: "Total number of COVID dataset lookups",
	}, []string{"status"})

	// Broadcast metrics
	broadcastSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_broadcast_sends_total",
		Help: "Total number of broadcast message sends",
	}, []string{"status"})

	broadcastRetractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_broadcast_retractions_total",
		Help: "Total number of broadcast message retractions",
	}, []string{"status"})

	// Registry metrics
	registryOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegram_bot_registry_operations_total",
		Help: "Total number of chat registry operations",
	}, []string{"operation", "status"})

	// Subscribed chats gauge
	subscribedChats = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "telegram_bot_subscribed_chats",
		Help: "Number of chats known to the announcement registry",
	})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordMessageReceived records a received message
func (m *Metrics) RecordMessageReceived(chatType string) {
	messagesReceived.WithLabelValues(chatType).Inc()
}

// RecordIntentMatched records a matched message intent
func (m *Metrics) RecordIntentMatched(intent string) {
	intentsMatched.WithLabelValues(intent).Inc()
}

// RecordCommandExecuted records an executed command
func (m *Metrics) RecordCommandExecuted(command string) {
	commandsExecuted.WithLabelValues(command).Inc()
}

// RecordCovidLookup records a COVID dataset lookup
func (m *Metrics) RecordCovidLookup(status string, duration time.Duration) {
	covidLookupDuration.WithLabelValues(status).Observe(duration.Seconds())
	covidLookupsTotal.WithLabelValues(status).Inc()
}

// RecordBroadcastSend records a single broadcast message send
func (m *Metrics) RecordBroadcastSend(status string) {
	broadcastSends.WithLabelValues(status).Inc()
}

// RecordBroadcastRetraction records a single broadcast message retraction
func (m *Metrics) RecordBroadcastRetraction(status string) {
	broadcastRetractions.WithLabelValues(status).Inc()
}

// RecordRegistryOperation records a chat registry operation
func (m *Metrics) RecordRegistryOperation(operation, status string) {
	registryOperations.WithLabelValues(operation, status).Inc()
}

// SetSubscribedChats sets the number of known announcement chats
func (m *Metrics) SetSubscribedChats(count float64) {
	subscribedChats.Set(count)
}

// StartMetricsServer starts the metrics HTTP server
func StartMetricsServer(port int, path string) error {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
