package domain

import (
	parcels "parcel-depot/internal/features/parcels/domain"
)

// Actors recorded on sorting steps that were not triggered by a person.
const (
	AutoSortActor  = "auto-sort-system"
	BatchSortActor = "batch-sort-system"
)

// Decision is a zone assignment with its reason.
type Decision struct {
	Zone   parcels.Zone `json:"zone"`
	Reason string       `json:"reason"`
}

// Decide assigns a sorting zone from destination and special-case state.
// The table is evaluated top to bottom, first match wins:
//
//  1. payment_pending special case  -> zone D
//  2. any other special case       -> zone C
//  3. destination kinshasa         -> zone A
//  4. destination lubumbashi       -> zone B
//  5. anything else                -> zone D
func Decide(parcel *parcels.Parcel) Decision {
	switch parcel.SpecialCaseType() {
	case parcels.CasePaymentPending:
		return Decision{Zone: parcels.ZoneD, Reason: "payment pending"}
	case "":
		// fall through to destination routing
	default:
		return Decision{Zone: parcels.ZoneC, Reason: "special case"}
	}

	switch parcel.NormalizedDestination() {
	case "kinshasa":
		return Decision{Zone: parcels.ZoneA, Reason: "destination kinshasa"}
	case "lubumbashi":
		return Decision{Zone: parcels.ZoneB, Reason: "destination lubumbashi"}
	default:
		return Decision{Zone: parcels.ZoneD, Reason: "unknown destination"}
	}
}
