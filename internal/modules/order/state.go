package order

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusAwaitingPayment: {StatusPaid, StatusCancelled},
	StatusPaid:            {StatusInProduction},
	StatusInProduction:    {StatusShipped},
	StatusShipped:         {},
	StatusCancelled:       {},
}

// CanTransition returns true if the transition from current to next is valid.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
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
