package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansParsed counts scanned payloads by detected format.
	ScansParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkbadge_scans_parsed_total",
		Help: "Scanned QR payloads by detected format.",
	}, []string{"format"})

	// DocumentWrites counts document mutations by entity and outcome.
	DocumentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkbadge_document_writes_total",
		Help: "Document create/update/delete operations by entity and outcome.",
	}, []string{"entity", "op", "outcome"})
)

// ObserveWrite records one document mutation.
func ObserveWrite(entity, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DocumentWrites.WithLabelValues(entity, op, outcome).Inc()
}
