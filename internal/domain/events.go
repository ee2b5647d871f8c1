package domain

// ============================================================
// Tracking events and user alerts
// ============================================================

// Tracking event names emitted by the session workflow.
const (
	EventPartyIDNotInToken = "PARTY_ID_NOT_IN_TOKEN"
	EventPartyIDNotFound   = "PARTY_ID_NOT_FOUND"
)

// Alert is a non-blocking, user visible error notification.
type Alert struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Component   string `json:"component"`
	Blocking    bool   `json:"blocking"`
	Err         error  `json:"-"`
}

// Generic alert copy keys.
const (
	AlertGenericTitle       = "errors.genericTitle"
	AlertGenericDescription = "errors.genericDescription"
)
