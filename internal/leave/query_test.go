package leave

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, value)
	require.NoError(t, err)
	return d
}

func sampleRequests(t *testing.T) []LeaveRequest {
	t.Helper()
	mk := func(name, dept, reason string, lt enums.LeaveType, status enums.LeaveStatus, priority enums.LeavePriority, start, end, submitted string) LeaveRequest {
		s, e := date(t, start), date(t, end)
		sub, err := time.Parse(time.RFC3339, submitted)
		require.NoError(t, err)
		return LeaveRequest{
			ID:          uuid.New(),
			StudentID:   uuid.New(),
			StudentName: name,
			Department:  dept,
			Reason:      reason,
			LeaveType:   lt,
			Status:      status,
			Priority:    priority,
			StartDate:   s,
			EndDate:     e,
			Duration:    DurationDays(s, e),
			SubmittedAt: sub,
		}
	}
	return []LeaveRequest{
		mk("Aarav Sharma", "Computer Science", "Family wedding in Jaipur", enums.LeaveTypeHome, enums.LeaveStatusPending, enums.LeavePriorityMedium, "2025-11-15", "2025-11-17", "2025-11-12T09:30:00Z"),
		mk("priya Patel", "Electrical", "High fever", enums.LeaveTypeSick, enums.LeaveStatusPending, enums.LeavePriorityHigh, "2025-11-10", "2025-11-11", "2025-11-09T08:00:00Z"),
		mk("Rahul Verma", "Mechanical", "Grandmother hospitalised", enums.LeaveTypeEmergency, enums.LeaveStatusApproved, enums.LeavePriorityUrgent, "2025-10-20", "2025-10-25", "2025-10-19T22:15:00Z"),
		mk("Sneha Reddy", "Computer Science", "Dental surgery", enums.LeaveTypeMedical, enums.LeaveStatusRejected, enums.LeavePriorityLow, "2025-11-01", "2025-11-01", "2025-10-28T10:00:00Z"),
		mk("Vikram Singh", "Civil", "Personal errands at home", enums.LeaveTypePersonal, enums.LeaveStatusPending, enums.LeavePriorityMedium, "2025-11-20", "2025-11-24", "2025-11-12T09:30:00Z"),
	}
}

func names(items []LeaveRequest) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.StudentName)
	}
	return out
}

func TestQueryFiltersByStatus(t *testing.T) {
	requests := sampleRequests(t)
	pending := enums.LeaveStatusPending

	got := Query(requests, FilterSpec{Status: &pending}, SortSpec{})
	assert.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, enums.LeaveStatusPending, r.Status)
	}
}

func TestQuerySearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	requests := sampleRequests(t)

	byName := Query(requests, FilterSpec{Search: "PRIYA"}, SortSpec{})
	assert.Equal(t, []string{"priya Patel"}, names(byName))

	byDept := Query(requests, FilterSpec{Search: "computer"}, SortSpec{Field: SortByStudentName, Direction: SortAsc})
	assert.Equal(t, []string{"Aarav Sharma", "Sneha Reddy"}, names(byDept))

	byReason := Query(requests, FilterSpec{Search: "home"}, SortSpec{})
	assert.Equal(t, []string{"Vikram Singh"}, names(byReason))
}

func TestQueryCombinesPredicates(t *testing.T) {
	requests := sampleRequests(t)
	pending := enums.LeaveStatusPending
	medium := enums.LeavePriorityMedium
	start := date(t, "2025-11-14")
	end := date(t, "2025-11-30")

	got := Query(requests, FilterSpec{
		Status:    &pending,
		Priority:  &medium,
		DateRange: DateRange{Start: &start, End: &end},
	}, SortSpec{Field: SortByStartDate, Direction: SortAsc})
	assert.Equal(t, []string{"Aarav Sharma", "Vikram Singh"}, names(got))

	narrowEnd := date(t, "2025-11-20")
	got = Query(requests, FilterSpec{DateRange: DateRange{Start: &start, End: &narrowEnd}}, SortSpec{})
	assert.Equal(t, []string{"Aarav Sharma"}, names(got))

	sick := enums.LeaveTypeSick
	got = Query(requests, FilterSpec{LeaveType: &sick, Department: "Electrical"}, SortSpec{})
	assert.Equal(t, []string{"priya Patel"}, names(got))

	got = Query(requests, FilterSpec{Department: "electrical"}, SortSpec{})
	assert.Empty(t, got)
}

func TestQueryDefaultSortIsNewestFirstAndStable(t *testing.T) {
	requests := sampleRequests(t)

	got := Query(requests, FilterSpec{}, SortSpec{})
	// Aarav and Vikram share a submission time and keep input order.
	assert.Equal(t, []string{"Aarav Sharma", "Vikram Singh", "priya Patel", "Sneha Reddy", "Rahul Verma"}, names(got))
}

func TestQuerySortsStringsCaseInsensitively(t *testing.T) {
	requests := sampleRequests(t)

	got := Query(requests, FilterSpec{}, SortSpec{Field: SortByStudentName, Direction: SortAsc})
	assert.Equal(t, []string{"Aarav Sharma", "priya Patel", "Rahul Verma", "Sneha Reddy", "Vikram Singh"}, names(got))

	got = Query(requests, FilterSpec{}, SortSpec{Field: SortByStudentName, Direction: SortDesc})
	assert.Equal(t, []string{"Vikram Singh", "Sneha Reddy", "Rahul Verma", "priya Patel", "Aarav Sharma"}, names(got))
}

func TestQuerySortsDurationNumerically(t *testing.T) {
	requests := sampleRequests(t)

	got := Query(requests, FilterSpec{}, SortSpec{Field: SortByDuration, Direction: SortDesc})
	durations := make([]int, 0, len(got))
	for _, r := range got {
		durations = append(durations, r.Duration)
	}
	assert.Equal(t, []int{6, 5, 3, 2, 1}, durations)
}

func TestQueryIsIdempotentAndLeavesInputAlone(t *testing.T) {
	requests := sampleRequests(t)
	original := names(requests)
	pending := enums.LeaveStatusPending
	filter := FilterSpec{Status: &pending}
	spec := SortSpec{Field: SortByPriority, Direction: SortAsc}

	once := Query(requests, filter, spec)
	twice := Query(once, filter, spec)

	assert.Equal(t, names(once), names(twice))
	assert.Equal(t, original, names(requests))
}

func TestQueryStableForEqualKeysInBothDirections(t *testing.T) {
	requests := sampleRequests(t)
	pending := enums.LeaveStatusPending

	asc := Query(requests, FilterSpec{Status: &pending}, SortSpec{Field: SortByStatus, Direction: SortAsc})
	desc := Query(requests, FilterSpec{Status: &pending}, SortSpec{Field: SortByStatus, Direction: SortDesc})

	want := []string{"Aarav Sharma", "priya Patel", "Vikram Singh"}
	assert.Equal(t, want, names(asc))
	assert.Equal(t, want, names(desc))
}

func TestParseSortFieldAndDirection(t *testing.T) {
	field, err := ParseSortField("StudentName")
	require.NoError(t, err)
	assert.Equal(t, SortByStudentName, field)

	_, err = ParseSortField("roomNumber")
	assert.Error(t, err)

	dir, err := ParseSortDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, dir)

	_, err = ParseSortDirection("sideways")
	assert.Error(t, err)
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 3, DurationDays(date(t, "2025-11-15"), date(t, "2025-11-17")))
	assert.Equal(t, 1, DurationDays(date(t, "2025-11-15"), date(t, "2025-11-15")))
	assert.Equal(t, 32, DurationDays(date(t, "2025-12-31"), date(t, "2026-01-31")))
	assert.Equal(t, 146098, DurationDays(date(t, "1900-01-01"), date(t, "2300-01-01")))
	assert.Equal(t, 3652059, DurationDays(date(t, "0001-01-01"), date(t, "9999-12-31")))

	ist := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2025, 3, 29, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 1, 0, 0, 0, ist)
	assert.Equal(t, 2, DurationDays(start, end))
}
