package order

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusReady:     true,
		StatusCancelled: true,
	},
	StatusReady: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Statuses lists every status in lifecycle order.
func Statuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusConfirmed, StatusProcessing, StatusReady, StatusDelivered, StatusCancelled}
}

// CanTransition reports whether the guarded lifecycle allows from -> to.
func CanTransition(from, to OrderStatus) bool {
	return allowedTransitions[from][to]
}

// NextStatuses are the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	next := make([]OrderStatus, 0, 2)
	for _, candidate := range Statuses() {
		if allowedTransitions[s][candidate] {
			next = append(next, candidate)
		}
	}
	return next
}
