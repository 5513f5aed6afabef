package enums

import (
	"fmt"
	"strings"
)

// LeavePriority is supplied by the submitter; it is never derived.
type LeavePriority string

const (
	LeavePriorityLow    LeavePriority = "low"
	LeavePriorityMedium LeavePriority = "medium"
	LeavePriorityHigh   LeavePriority = "high"
	LeavePriorityUrgent LeavePriority = "urgent"
)

var validLeavePriorities = []LeavePriority{
	LeavePriorityLow,
	LeavePriorityMedium,
	LeavePriorityHigh,
	LeavePriorityUrgent,
}

func (p LeavePriority) String() string {
	return string(p)
}

func (p LeavePriority) IsValid() bool {
	for _, candidate := range validLeavePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseLeavePriority(value string) (LeavePriority, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLeavePriorities {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid leave priority %q", value)
}
