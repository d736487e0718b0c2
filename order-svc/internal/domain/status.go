package domain

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusCooking    Status = "cooking"
	StatusDelivering Status = "delivering"
	StatusArrived    Status = "arrived"
	StatusCanceled   Status = "canceled"
)

// Progression is the intended order of non-cancel states.
var Progression = []Status{StatusPending, StatusAccepted, StatusCooking, StatusDelivering, StatusArrived}

// IsTerminal reports whether polling clients should stop on this status.
func (s Status) IsTerminal() bool {
	return s == StatusArrived || s == StatusCanceled
}

func (s Status) IsKnown() bool {
	if s == StatusCanceled {
		return true
	}
	return s.rank() >= 0
}

// CanAdvanceTo reports whether next follows s in the intended lifecycle.
// The server never enforces this; it only drives client-side hints.
func (s Status) CanAdvanceTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCanceled {
		return s.IsKnown()
	}
	from, to := s.rank(), next.rank()
	return from >= 0 && to == from+1
}

func (s Status) rank() int {
	for i, st := range Progression {
		if st == s {
			return i
		}
	}
	return -1
}
