package notifications

import (
	"fmt"
	"strings"

	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// Render produces the title and message for a notification.
func Render(n leave.Notification) (string, string) {
	p := n.Payload
	label := p.LeaveType.Label()
	span := dateSpan(p)

	var title, message string
	switch n.Kind {
	case enums.NotificationKindLeaveSubmitted:
		title = "Leave request submitted"
		message = fmt.Sprintf("%s for %s has been submitted and is awaiting review.", label, span)
	case enums.NotificationKindLeaveApproved:
		title = "Leave request approved"
		message = fmt.Sprintf("%s for %s was approved%s.", label, span, reviewedBy(p.ReviewerName))
	case enums.NotificationKindLeaveRejected:
		title = "Leave request rejected"
		message = fmt.Sprintf("%s for %s was rejected%s.", label, span, reviewedBy(p.ReviewerName))
	case enums.NotificationKindLeaveExpired:
		title = "Leave request expired"
		message = fmt.Sprintf("%s for %s expired before it was reviewed.", label, span)
	default:
		title = "Leave request update"
		message = fmt.Sprintf("%s for %s is now %s.", label, span, p.Status)
	}
	if c := strings.TrimSpace(p.Comment); c != "" {
		message += " Comment: " + c
	}

	if n.Audience == enums.NotificationAudienceParent {
		title = fmt.Sprintf("%s: %s", p.StudentName, title)
		message = fmt.Sprintf("Update for %s: %s", p.StudentName, message)
	}
	return title, message
}

func dateSpan(p leave.NotificationPayload) string {
	days := "day"
	if p.Duration != 1 {
		days = "days"
	}
	if p.StartDate == p.EndDate {
		return fmt.Sprintf("%s (%d %s)", p.StartDate, p.Duration, days)
	}
	return fmt.Sprintf("%s to %s (%d %s)", p.StartDate, p.EndDate, p.Duration, days)
}

func reviewedBy(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return " by " + name
}
