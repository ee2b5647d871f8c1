package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// PortalMetrics is returned by GET /v1/metrics/portal.
type PortalMetrics struct {
	PartyResolutions   map[string]int64 `json:"partyResolutions"`
	SynthesizedRate    float64          `json:"synthesizedRate"`
	PartyCacheHitRate  float64          `json:"partyCacheHitRate"`
	PageCacheHitRate   float64          `json:"pageCacheHitRate"`
	ExternalErrors     int64            `json:"externalErrors"`
	AlertsDispatched   int64            `json:"alertsDispatched"`
	TransactionsCancel int64            `json:"transactionsCancelled"`
	Period             string           `json:"period"`
}
