package model

// Status is the prediction job state. The integer values are part of the HTTP contract.
type Status int

const (
	StatusIdle Status = iota
	StatusRequested
	StatusInProgress
	StatusCompleted
	StatusFailed
)

var statusMessages = map[Status]string{
	StatusIdle:       "No prediction requested",
	StatusRequested:  "Prediction requested",
	StatusInProgress: "Prediction in progress",
	StatusCompleted:  "Prediction completed",
	StatusFailed:     "Prediction failed",
}

// Message returns the fixed human readable text for the status.
func (s Status) Message() string {
	if m, ok := statusMessages[s]; ok {
		return m
	}
	return "Unknown status"
}

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRequested:
		return "requested"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the job has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Active reports whether a job occupies the slot.
func (s Status) Active() bool {
	return s == StatusRequested || s == StatusInProgress
}
