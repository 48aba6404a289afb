package domain

import "time"

// SpecialCaseKind is the exception tag that removes a parcel from the normal
// weigh/sort path pending manual resolution.
type SpecialCaseKind string

const (
	CaseFragile        SpecialCaseKind = "fragile"
	CaseDangerous      SpecialCaseKind = "dangerous"
	CaseOversized      SpecialCaseKind = "oversized"
	CaseDamaged        SpecialCaseKind = "damaged"
	CasePaymentPending SpecialCaseKind = "payment_pending"
	CaseCustomsIssue   SpecialCaseKind = "customs_issue"
	CaseHighValue      SpecialCaseKind = "high_value"
	CaseLost           SpecialCaseKind = "lost"
	CaseReturned       SpecialCaseKind = "returned"
)

// defaultReasons are the canned reasons used when the operator supplies none.
var defaultReasons = map[SpecialCaseKind]string{
	CaseFragile:        "Fragile content, manual handling required",
	CaseDangerous:      "Dangerous goods, segregated handling required",
	CaseOversized:      "Parcel exceeds standard dimensions",
	CaseDamaged:        "Visible damage observed at intake",
	CasePaymentPending: "Awaiting payment before release",
	CaseCustomsIssue:   "Held pending customs clearance",
	CaseHighValue:      "High declared value, secure storage required",
	CaseLost:           "Parcel reported lost in transit",
	CaseReturned:       "Parcel returned to sender",
}

// Valid reports whether the tag is one of the nine known kinds.
func (k SpecialCaseKind) Valid() bool {
	_, ok := defaultReasons[k]
	return ok
}

// DefaultReason returns the canned reason for the tag.
func (k SpecialCaseKind) DefaultReason() string {
	return defaultReasons[k]
}

// SpecialCase records an exception declared on a parcel.
type SpecialCase struct {
	// Type is the exception tag.
	Type SpecialCaseKind `json:"type"`
	// Reason is the operator-supplied reason, or the tag's canned default.
	Reason string `json:"reason"`
	// DeclaredBy is the operator who declared the case.
	DeclaredBy string `json:"declaredBy"`
	// DeclaredAt is when the case was declared.
	DeclaredAt time.Time `json:"declaredAt"`
}
