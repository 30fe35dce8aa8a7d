package domain

type DeliverableStatus string

const (
	DeliverableDraft            DeliverableStatus = "DRAFT"
	DeliverableSent             DeliverableStatus = "SENT"
	DeliverableApproved         DeliverableStatus = "APPROVED"
	DeliverableChangesRequested DeliverableStatus = "CHANGES_REQUESTED"
)

func (s DeliverableStatus) Valid() bool {
	switch s {
	case DeliverableDraft, DeliverableSent, DeliverableApproved, DeliverableChangesRequested:
		return true
	}
	return false
}

// BrandActionable reports whether a brand reviewer may set this status at
// the public endpoint. Brands only ever approve or request changes.
func (s DeliverableStatus) BrandActionable() bool {
	return s == DeliverableApproved || s == DeliverableChangesRequested
}

// CanTransition is the single transition check shared by the creator update
// path and the public brand path.
//
// Creators move a draft into review (DRAFT -> SENT). Brands decide on a sent
// deliverable (SENT -> APPROVED | CHANGES_REQUESTED) and may flip between the
// two decisions afterwards as a manual override. Nothing returns to DRAFT or
// SENT once the brand has acted; re-review means a new deliverable version.
// Writing the current status again is always allowed.
func CanTransition(from, to DeliverableStatus, role AuthorRole) bool {
	if from == to {
		return true
	}

	switch role {
	case RoleCreator:
		return from == DeliverableDraft && to == DeliverableSent
	case RoleBrand:
		switch from {
		case DeliverableSent, DeliverableApproved, DeliverableChangesRequested:
			return to.BrandActionable()
		}
	}

	return false
}
