package leave

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// DateRange bounds a request's dates: start >= Start and end <= End.
// Either bound may be nil.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// FilterSpec is a conjunction of optional predicates. The zero value matches everything.
type FilterSpec struct {
	Search     string
	Status     *enums.LeaveStatus
	LeaveType  *enums.LeaveType
	Department string
	Priority   *enums.LeavePriority
	DateRange  DateRange
}

type SortField string

const (
	SortBySubmittedAt SortField = "submittedAt"
	SortByStartDate   SortField = "startDate"
	SortByEndDate     SortField = "endDate"
	SortByDuration    SortField = "duration"
	SortByStudentName SortField = "studentName"
	SortByDepartment  SortField = "department"
	SortByLeaveType   SortField = "leaveType"
	SortByStatus      SortField = "status"
	SortByPriority    SortField = "priority"
)

var sortFields = []SortField{
	SortBySubmittedAt,
	SortByStartDate,
	SortByEndDate,
	SortByDuration,
	SortByStudentName,
	SortByDepartment,
	SortByLeaveType,
	SortByStatus,
	SortByPriority,
}

// ParseSortField matches case-insensitively against the closed field set.
func ParseSortField(value string) (SortField, error) {
	for _, candidate := range sortFields {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unsupported sort field %q", value)
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func ParseSortDirection(value string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("unsupported sort direction %q", value)
	}
}

// SortSpec orders query results. The zero value sorts newest submissions first.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

func (s SortSpec) withDefaults() SortSpec {
	if s.Field == "" {
		s.Field = SortBySubmittedAt
		if s.Direction == "" {
			s.Direction = SortDesc
		}
	}
	if s.Direction == "" {
		s.Direction = SortAsc
	}
	return s
}

// Matches reports whether r passes every filter that is set.
func (f FilterSpec) Matches(r LeaveRequest) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(r.StudentName), term) &&
			!strings.Contains(strings.ToLower(r.Department), term) &&
			!strings.Contains(strings.ToLower(r.Reason), term) {
			return false
		}
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.LeaveType != nil && r.LeaveType != *f.LeaveType {
		return false
	}
	if f.Department != "" && r.Department != f.Department {
		return false
	}
	if f.Priority != nil && r.Priority != *f.Priority {
		return false
	}
	if f.DateRange.Start != nil && normalizeDate(r.StartDate).Before(normalizeDate(*f.DateRange.Start)) {
		return false
	}
	if f.DateRange.End != nil && normalizeDate(r.EndDate).After(normalizeDate(*f.DateRange.End)) {
		return false
	}
	return true
}

// Query filters and orders requests without touching the input slice.
// The sort is stable, so equal keys keep their input order in both directions.
func Query(requests []LeaveRequest, filter FilterSpec, spec SortSpec) []LeaveRequest {
	spec = spec.withDefaults()

	out := make([]LeaveRequest, 0, len(requests))
	for _, r := range requests {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}

	cmp := comparatorFor(spec.Field)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if spec.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

type comparator func(a, b LeaveRequest) int

func comparatorFor(field SortField) comparator {
	switch field {
	case SortByStartDate:
		return func(a, b LeaveRequest) int { return a.StartDate.Compare(b.StartDate) }
	case SortByEndDate:
		return func(a, b LeaveRequest) int { return a.EndDate.Compare(b.EndDate) }
	case SortByDuration:
		return func(a, b LeaveRequest) int { return compareInts(a.Duration, b.Duration) }
	case SortByStudentName:
		return stringComparator(func(r LeaveRequest) string { return r.StudentName })
	case SortByDepartment:
		return stringComparator(func(r LeaveRequest) string { return r.Department })
	case SortByLeaveType:
		return stringComparator(func(r LeaveRequest) string { return string(r.LeaveType) })
	case SortByStatus:
		return stringComparator(func(r LeaveRequest) string { return string(r.Status) })
	case SortByPriority:
		return stringComparator(func(r LeaveRequest) string { return string(r.Priority) })
	default:
		return func(a, b LeaveRequest) int { return a.SubmittedAt.Compare(b.SubmittedAt) }
	}
}

func stringComparator(key func(LeaveRequest) string) comparator {
	return func(a, b LeaveRequest) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
