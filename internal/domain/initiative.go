package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ============================================================
// Initiatives
// ============================================================

// Initiative statuses relevant to the merchant portal.
const (
	InitiativePublished = "PUBLISHED"
	InitiativeClosed    = "CLOSED"
)

// Initiative is a discount program the merchant participates in.
type Initiative struct {
	InitiativeID     string `json:"initiativeId"`
	InitiativeName   string `json:"initiativeName"`
	OrganizationName string `json:"organizationName"`
	ServiceID        string `json:"serviceId"`
	Status           string `json:"status"`
	StartDate        Date   `json:"startDate"`
	EndDate          Date   `json:"endDate"`
	Enabled          bool   `json:"enabled"`
}

// Date is a calendar date exchanged as "2006-01-02" (RFC 3339 accepted on input).
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
	}
	d.Time = t
	return nil
}

// VisibleInitiatives keeps only PUBLISHED and CLOSED initiatives.
func VisibleInitiatives(list []Initiative) []Initiative {
	out := make([]Initiative, 0, len(list))
	for _, in := range list {
		if in.Status == InitiativePublished || in.Status == InitiativeClosed {
			out = append(out, in)
		}
	}
	return out
}

// FilterInitiatives returns the initiatives whose name contains search,
// ignoring case. An empty search returns a copy of list.
func FilterInitiatives(list []Initiative, search string) []Initiative {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]Initiative, 0, len(list))
	for _, in := range list {
		if needle == "" || strings.Contains(strings.ToLower(in.InitiativeName), needle) {
			out = append(out, in)
		}
	}
	return out
}

// SortOrder is the direction of a table sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable initiative columns.
const (
	SortByInitiativeName   = "initiativeName"
	SortByOrganizationName = "organizationName"
	SortByStatus           = "status"
	SortByStartDate        = "startDate"
	SortByEndDate          = "endDate"
	SortByEnabled          = "enabled"
	SortBySpendingPeriod   = "spendingPeriod"
)

var initiativeComparators = map[string]func(a, b Initiative) int{
	SortByInitiativeName:   func(a, b Initiative) int { return cmp.Compare(a.InitiativeName, b.InitiativeName) },
	SortByOrganizationName: func(a, b Initiative) int { return cmp.Compare(a.OrganizationName, b.OrganizationName) },
	SortByStatus:           func(a, b Initiative) int { return cmp.Compare(a.Status, b.Status) },
	SortByStartDate:        func(a, b Initiative) int { return a.StartDate.Compare(b.StartDate.Time) },
	SortByEndDate:          func(a, b Initiative) int { return a.EndDate.Compare(b.EndDate.Time) },
	SortByEnabled:          func(a, b Initiative) int { return compareBool(a.Enabled, b.Enabled) },
}

// SortInitiatives returns a sorted copy of list. Ties keep their original
// relative order, so sorting an already sorted list is a no-op.
// spendingPeriod is a composite column and cannot be sorted.
func SortInitiatives(list []Initiative, orderBy string, order SortOrder) ([]Initiative, error) {
	out := slices.Clone(list)
	if orderBy == "" {
		return out, nil
	}
	if orderBy == SortBySpendingPeriod {
		return nil, &ErrValidation{Field: "orderBy", Message: "spendingPeriod is not sortable"}
	}
	compare, ok := initiativeComparators[orderBy]
	if !ok {
		return nil, &ErrValidation{Field: "orderBy", Message: fmt.Sprintf("unknown column '%s'", orderBy)}
	}
	switch order {
	case SortAsc, "":
	case SortDesc:
		asc := compare
		compare = func(a, b Initiative) int { return asc(b, a) }
	default:
		return nil, &ErrValidation{Field: "order", Message: "must be asc or desc"}
	}
	StableSort(out, compare)
	return out, nil
}

// StableSort sorts items in place; equal elements keep their input order.
func StableSort[T any](items []T, compare func(a, b T) int) {
	slices.SortStableFunc(items, compare)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// ============================================================
// Initiative overview
// ============================================================

// InitiativeStatistics holds the merchant's amounts for an initiative.
type InitiativeStatistics struct {
	AmountCents   int64 `json:"amountCents"`
	RefundedCents int64 `json:"refundedCents"`
}

// MerchantDetail holds the merchant registry data for an initiative.
type MerchantDetail struct {
	InitiativeID       string `json:"initiativeId"`
	InitiativeName     string `json:"initiativeName"`
	BusinessName       string `json:"businessName"`
	LegalOfficeAddress string `json:"legalOfficeAddress"`
	FiscalCode         string `json:"fiscalCode"`
	VatNumber          string `json:"vatNumber"`
	IBAN               string `json:"iban"`
	Status             string `json:"status"`
}

// InitiativeOverview is the combined payload of the overview page.
type InitiativeOverview struct {
	InitiativeID  string          `json:"initiativeId"`
	AmountCents   int64           `json:"amountCents"`
	RefundedCents int64           `json:"refundedCents"`
	Amount        string          `json:"amount"`
	Refunded      string          `json:"refunded"`
	Detail        *MerchantDetail `json:"detail"`
}
