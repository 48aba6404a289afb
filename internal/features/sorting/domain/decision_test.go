package domain

import (
	"testing"

	parcels "parcel-depot/internal/features/parcels/domain"

	"github.com/stretchr/testify/assert"
)

func parcelFor(destination string, kind parcels.SpecialCaseKind) *parcels.Parcel {
	p := &parcels.Parcel{Destination: destination}
	if kind != "" {
		p.SpecialCase = &parcels.SpecialCase{Type: kind, Reason: kind.DefaultReason()}
	}
	return p
}

// TestDecide_DestinationRouting verifies rows 3-5 of the decision table.
func TestDecide_DestinationRouting(t *testing.T) {
	cases := []struct {
		destination string
		zone        parcels.Zone
		reason      string
	}{
		{"kinshasa", parcels.ZoneA, "destination kinshasa"},
		{"Kinshasa", parcels.ZoneA, "destination kinshasa"},
		{"KINSHASA", parcels.ZoneA, "destination kinshasa"},
		{"lubumbashi", parcels.ZoneB, "destination lubumbashi"},
		{"LUBUMBASHI", parcels.ZoneB, "destination lubumbashi"},
		{"goma", parcels.ZoneD, "unknown destination"},
		{"", parcels.ZoneD, "unknown destination"},
	}

	for _, tc := range cases {
		t.Run("dest_"+tc.destination, func(t *testing.T) {
			d := Decide(parcelFor(tc.destination, ""))
			assert.Equal(t, tc.zone, d.Zone)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

// TestDecide_SpecialCasePrecedence verifies rows 1-2 win over destination.
func TestDecide_SpecialCasePrecedence(t *testing.T) {
	d := Decide(parcelFor("lubumbashi", parcels.CasePaymentPending))
	assert.Equal(t, parcels.ZoneD, d.Zone)
	assert.Equal(t, "payment pending", d.Reason)

	d = Decide(parcelFor("kinshasa", parcels.CaseFragile))
	assert.Equal(t, parcels.ZoneC, d.Zone)
	assert.Equal(t, "special case", d.Reason)

	d = Decide(parcelFor("kinshasa", parcels.CaseCustomsIssue))
	assert.Equal(t, parcels.ZoneC, d.Zone)
}
