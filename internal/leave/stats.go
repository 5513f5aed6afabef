package leave

import (
	"math"
	"sort"

	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

type Statistics struct {
	Total        int                   `json:"total"`
	Pending      int                   `json:"pending"`
	Approved     int                   `json:"approved"`
	Rejected     int                   `json:"rejected"`
	Expired      int                   `json:"expired"`
	ApprovalRate int                   `json:"approvalRate"`
	PendingRate  int                   `json:"pendingRate"`
	Departments  []DepartmentBreakdown `json:"departments"`
	LeaveTypes   []LeaveTypeShare      `json:"leaveTypes"`
	Monthly      []MonthlyTrend        `json:"monthly"`
}

type DepartmentBreakdown struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Approved   int    `json:"approved"`
	Rejected   int    `json:"rejected"`
}

// LeaveTypeShare percentages are rounded independently and may not sum to 100.
type LeaveTypeShare struct {
	LeaveType  enums.LeaveType `json:"leaveType"`
	Count      int             `json:"count"`
	Percentage int             `json:"percentage"`
}

type MonthlyTrend struct {
	Month    string `json:"month"`
	Requests int    `json:"requests"`
	Approved int    `json:"approved"`
}

// ComputeStatistics aggregates requests. It is pure; callers recompute on demand.
func ComputeStatistics(requests []LeaveRequest) Statistics {
	stats := Statistics{Total: len(requests)}

	departments := map[string]*DepartmentBreakdown{}
	typeCounts := map[enums.LeaveType]int{}
	months := map[string]*MonthlyTrend{}

	for _, r := range requests {
		switch r.Status {
		case enums.LeaveStatusPending:
			stats.Pending++
		case enums.LeaveStatusApproved:
			stats.Approved++
		case enums.LeaveStatusRejected:
			stats.Rejected++
		case enums.LeaveStatusExpired:
			stats.Expired++
		}

		dept, ok := departments[r.Department]
		if !ok {
			dept = &DepartmentBreakdown{Department: r.Department}
			departments[r.Department] = dept
		}
		dept.Total++
		switch r.Status {
		case enums.LeaveStatusPending:
			dept.Pending++
		case enums.LeaveStatusApproved:
			dept.Approved++
		case enums.LeaveStatusRejected:
			dept.Rejected++
		}

		typeCounts[r.LeaveType]++

		key := r.SubmittedAt.UTC().Format("2006-01")
		month, ok := months[key]
		if !ok {
			month = &MonthlyTrend{Month: key}
			months[key] = month
		}
		month.Requests++
		if r.Status == enums.LeaveStatusApproved {
			month.Approved++
		}
	}

	stats.ApprovalRate = percentOf(stats.Approved, stats.Total)
	stats.PendingRate = percentOf(stats.Pending, stats.Total)

	stats.Departments = make([]DepartmentBreakdown, 0, len(departments))
	for _, dept := range departments {
		stats.Departments = append(stats.Departments, *dept)
	}
	sort.Slice(stats.Departments, func(i, j int) bool {
		a, b := stats.Departments[i], stats.Departments[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Department < b.Department
	})

	stats.LeaveTypes = make([]LeaveTypeShare, 0, len(typeCounts))
	for _, lt := range enums.LeaveTypes() {
		count := typeCounts[lt]
		stats.LeaveTypes = append(stats.LeaveTypes, LeaveTypeShare{
			LeaveType:  lt,
			Count:      count,
			Percentage: percentOf(count, stats.Total),
		})
	}

	stats.Monthly = make([]MonthlyTrend, 0, len(months))
	for _, month := range months {
		stats.Monthly = append(stats.Monthly, *month)
	}
	sort.Slice(stats.Monthly, func(i, j int) bool {
		return stats.Monthly[i].Month < stats.Monthly[j].Month
	})

	return stats
}

func percentOf(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
