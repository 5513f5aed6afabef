package enums

import (
	"fmt"
	"strings"
)

// AttendanceStatus is the last recorded attendance mark of a student.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusOnLeave AttendanceStatus = "on-leave"
)

var validAttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusAbsent,
	AttendanceStatusLate,
	AttendanceStatusOnLeave,
}

func (a AttendanceStatus) IsValid() bool {
	for _, candidate := range validAttendanceStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAttendanceStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendance status %q", value)
}
