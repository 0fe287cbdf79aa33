package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orange",
		Subsystem: "requests",
		Name:      "created_total",
		Help:      "Total number of collaboration requests created.",
	})

	requestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orange",
		Subsystem: "requests",
		Name:      "transitions_total",
		Help:      "Status transition attempts broken down by target status and outcome.",
	}, []string{"status", "outcome"})

	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orange",
		Subsystem: "messages",
		Name:      "sent_total",
		Help:      "Total number of chat messages appended.",
	})

	messageAppendRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orange",
		Subsystem: "messages",
		Name:      "append_retries_total",
		Help:      "Message appends retried after a sequence conflict.",
	})

	transcriptReads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orange",
		Subsystem: "messages",
		Name:      "transcript_reads_total",
		Help:      "Total number of transcript reads, including client polls.",
	})
)

func recordTransition(status string, err error) {
	outcome := "applied"
	if err != nil {
		outcome = "rejected"
	}
	requestTransitions.WithLabelValues(status, outcome).Inc()
}
