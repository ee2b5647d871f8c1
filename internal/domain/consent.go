package domain

// ============================================================
// Portal consent (terms of service)
// ============================================================

// PortalConsent is the pending consent descriptor. VersionID is empty when
// nothing is pending.
type PortalConsent struct {
	VersionID       string `json:"versionId,omitempty"`
	FirstAcceptance bool   `json:"firstAcceptance"`
}

// TOSState is what the consent gate exposes to the portal.
// IsTOSAccepted is nil until the pending consent has been loaded.
type TOSState struct {
	IsTOSAccepted   *bool `json:"isTOSAccepted"`
	FirstAcceptance bool  `json:"firstAcceptance"`
}
