package enums

import (
	"fmt"
	"strings"
)

// LeaveStatus tracks where a leave request sits in its lifecycle.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
	LeaveStatusExpired  LeaveStatus = "expired"
)

var validLeaveStatuses = []LeaveStatus{
	LeaveStatusPending,
	LeaveStatusApproved,
	LeaveStatusRejected,
	LeaveStatusExpired,
}

// String implements fmt.Stringer.
func (s LeaveStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known status.
func (s LeaveStatus) IsValid() bool {
	for _, candidate := range validLeaveStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s LeaveStatus) IsTerminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected || s == LeaveStatusExpired
}

// ParseLeaveStatus converts a raw string (case-insensitive) into LeaveStatus.
func ParseLeaveStatus(value string) (LeaveStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLeaveStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid leave status %q", value)
}
