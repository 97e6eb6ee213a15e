package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the vault core.
type Metrics struct {
	DocumentsIssued  prometheus.Counter
	DocumentsRevoked prometheus.Counter
	Verifications    *prometheus.CounterVec
	GrantsCreated    prometheus.Counter
	GrantsRevoked    prometheus.Counter
	GrantResolutions *prometheus.CounterVec
	AuditAppends     prometheus.Counter
	LedgerSubmitSecs prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DocumentsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_documents_issued_total",
			Help: "Total number of documents issued",
		}),
		DocumentsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_documents_revoked_total",
			Help: "Total number of documents revoked",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_verifications_total",
			Help: "Total number of document verifications by outcome",
		}, []string{"outcome"}),
		GrantsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_share_grants_created_total",
			Help: "Total number of share grants created",
		}),
		GrantsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_share_grants_revoked_total",
			Help: "Total number of share grants revoked",
		}),
		GrantResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_grant_resolutions_total",
			Help: "Total number of share grant resolutions by outcome",
		}, []string{"outcome"}),
		AuditAppends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_audit_appends_total",
			Help: "Total number of access audit entries recorded",
		}),
		LedgerSubmitSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vault_ledger_submit_duration_seconds",
			Help:    "Duration of anchor submissions to the ledger collaborator",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveVerification records a verification outcome ("match", "mismatch" or
// "unavailable").
func (m *Metrics) ObserveVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

// ObserveGrantResolution records a grant resolution outcome ("ok", "inactive"
// or "not_found").
func (m *Metrics) ObserveGrantResolution(outcome string) {
	if m == nil {
		return
	}
	m.GrantResolutions.WithLabelValues(outcome).Inc()
}
