package domain

// ============================================================
// Transaction status classification
// ============================================================

// StatusVariant selects which status domain a table shows.
type StatusVariant string

const (
	VariantPreProcessing StatusVariant = "pre_processing"
	VariantProcessed     StatusVariant = "processed"
)

// StatusDisplay is what the portal shows for a status chip.
type StatusDisplay struct {
	LabelKey      string `json:"labelKey"`
	ColorCategory string `json:"colorCategory"`
}

type statusRule struct {
	display   StatusDisplay
	authorize bool
	cancel    bool
}

var statusRules = map[TransactionStatus]statusRule{
	StatusCreated:                {StatusDisplay{"identified", "default"}, true, true},
	StatusIdentified:             {StatusDisplay{"identified", "default"}, true, true},
	StatusAuthorizationRequested: {StatusDisplay{"authorizationRequested", "warning"}, false, true},
	StatusAuthorized:             {StatusDisplay{"authorized", "info"}, false, true},
	StatusRejected:               {StatusDisplay{"invalidated", "error"}, false, true},
	StatusRewarded:               {StatusDisplay{"rewarded", "success"}, false, false},
	StatusCancelled:              {StatusDisplay{"cancelled", "error"}, false, false},
}

var unknownStatus = statusRule{display: StatusDisplay{"unknown", "default"}}

// ClassifyForDisplay maps a raw status to its label key and color.
func ClassifyForDisplay(status TransactionStatus) StatusDisplay {
	return ruleFor(status).display
}

// CanAuthorize reports whether the authorize action is legal for status.
func CanAuthorize(status TransactionStatus) bool {
	return ruleFor(status).authorize
}

// CanCancel reports whether the cancel action is legal for status.
func CanCancel(status TransactionStatus) bool {
	return ruleFor(status).cancel
}

// IsTerminal reports whether status is a post-processing outcome.
func IsTerminal(status TransactionStatus) bool {
	return status == StatusRewarded || status == StatusCancelled
}

// VariantOf returns the status domain status belongs to.
func VariantOf(status TransactionStatus) StatusVariant {
	if IsTerminal(status) {
		return VariantProcessed
	}
	return VariantPreProcessing
}

// IsKnownStatus reports whether status belongs to variant.
func IsKnownStatus(variant StatusVariant, status TransactionStatus) bool {
	if _, ok := statusRules[status]; !ok {
		return false
	}
	return VariantOf(status) == variant
}

func ruleFor(status TransactionStatus) statusRule {
	if r, ok := statusRules[status]; ok {
		return r
	}
	return unknownStatus
}
