package design

// Status represents the lifecycle state of a design.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusChangesRequested Status = "changes_requested"
	StatusOrdered          Status = "ordered"
)

// validTransitions defines the allowed state machine transitions for designs.
// Deletion is not a status and is gated by Deletable.
var validTransitions = map[Status][]Status{
	StatusDraft:            {StatusSubmitted},
	StatusChangesRequested: {StatusSubmitted},
	StatusSubmitted:        {StatusApproved, StatusRejected, StatusChangesRequested},
	StatusApproved:         {StatusOrdered},
	StatusRejected:         {},
	StatusOrdered:          {},
}

// CanTransition returns true if the transition from current to next is valid.
func CanTransition(current, next Status) bool {
	allowed, ok := validTransitions[current]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// PlacementsEditable reports whether artwork may be added, moved or removed.
func (s Status) PlacementsEditable() bool {
	return s == StatusDraft || s == StatusChangesRequested
}

// QuantitiesEditable reports whether size quantities may be written.
func (s Status) QuantitiesEditable() bool {
	return s == StatusApproved
}

// Deletable reports whether the owner may still discard the design.
func (s Status) Deletable() bool {
	switch s {
	case StatusDraft, StatusChangesRequested, StatusSubmitted, StatusApproved:
		return true
	}
	return false
}

// editableStatuses are preferred when rehydrating the editor.
var editableStatuses = []Status{StatusDraft, StatusChangesRequested}
