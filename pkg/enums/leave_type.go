package enums

import (
	"fmt"
	"strings"
)

// LeaveType classifies why a student is away.
type LeaveType string

const (
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeEmergency LeaveType = "emergency"
	LeaveTypePersonal  LeaveType = "personal"
	LeaveTypeHome      LeaveType = "home"
	LeaveTypeMedical   LeaveType = "medical"
)

var validLeaveTypes = []LeaveType{
	LeaveTypeSick,
	LeaveTypeEmergency,
	LeaveTypePersonal,
	LeaveTypeHome,
	LeaveTypeMedical,
}

// LeaveTypes returns the canonical ordering used in reports.
func LeaveTypes() []LeaveType {
	out := make([]LeaveType, len(validLeaveTypes))
	copy(out, validLeaveTypes)
	return out
}

func (t LeaveType) String() string {
	return string(t)
}

// Label is the human readable name shown in notifications.
func (t LeaveType) Label() string {
	switch t {
	case LeaveTypeSick:
		return "Sick Leave"
	case LeaveTypeEmergency:
		return "Emergency Leave"
	case LeaveTypePersonal:
		return "Personal Leave"
	case LeaveTypeHome:
		return "Home Visit"
	case LeaveTypeMedical:
		return "Medical Leave"
	default:
		return string(t)
	}
}

func (t LeaveType) IsValid() bool {
	for _, candidate := range validLeaveTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLeaveType converts a raw string (case-insensitive) into LeaveType.
func ParseLeaveType(value string) (LeaveType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLeaveTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid leave type %q", value)
}
