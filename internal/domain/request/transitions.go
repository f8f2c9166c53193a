package request

// transitions is the complete edge table of the surgery-request lifecycle.
// Requests already underway cannot be cancelled or postponed: nothing leaves
// in-progress except post-op, and nothing leaves post-op except completed.
// completed, cancelled and postponed are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusReviewed, StatusCancelled, StatusPostponed},
	StatusReviewed:   {StatusScheduled, StatusCancelled, StatusPostponed},
	StatusScheduled:  {StatusPreOp, StatusCancelled, StatusPostponed},
	StatusPreOp:      {StatusInProgress},
	StatusInProgress: {StatusPostOp},
	StatusPostOp:     {StatusCompleted},
}

// CanTransition reports whether the edge from -> to is in the table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
