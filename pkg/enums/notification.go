package enums

import "fmt"

// NotificationKind selects the template rendered for a notification.
type NotificationKind string

const (
	NotificationKindLeaveSubmitted NotificationKind = "leave_submitted"
	NotificationKindLeaveApproved  NotificationKind = "leave_approved"
	NotificationKindLeaveRejected  NotificationKind = "leave_rejected"
	NotificationKindLeaveExpired   NotificationKind = "leave_expired"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindLeaveSubmitted,
	NotificationKindLeaveApproved,
	NotificationKindLeaveRejected,
	NotificationKindLeaveExpired,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// NotificationAudience is who a notification is addressed to.
type NotificationAudience string

const (
	NotificationAudienceStudent NotificationAudience = "student"
	NotificationAudienceParent  NotificationAudience = "parent"
)

func (a NotificationAudience) IsValid() bool {
	return a == NotificationAudienceStudent || a == NotificationAudienceParent
}
