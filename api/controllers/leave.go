package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-backend/api/responses"
	"github.com/hostelhub/hostelhub-backend/api/validators"
	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/types"
)

const (
	maxLeavePageSize = 200
	maxSearchLength  = 100
)

// submitLeaveRequest is validated by the engine so field errors come back in one shape.
type submitLeaveRequest struct {
	StudentID string           `json:"studentId"`
	LeaveType string           `json:"leaveType"`
	Priority  string           `json:"priority"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Reason    string           `json:"reason"`
	Documents []leave.Document `json:"documents"`
}

type decisionRequest struct {
	Comment *string `json:"comment"`
}

type bulkDecisionRequest struct {
	IDs     []string `json:"ids" validate:"required,min=1"`
	Comment *string  `json:"comment"`
}

// ListLeaveRequests maps query parameters onto the filter and sort specs.
func ListLeaveRequests(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leave service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := parseLeaveFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sort, err := parseLeaveSort(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxLeavePageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), actor, leave.ListInput{
			Filter: filter,
			Sort:   sort,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result.Items, types.PageMeta{
			Total:  &result.Total,
			Limit:  limit,
			Offset: offset,
		})
	}
}

// SubmitLeaveRequest creates a pending request for the caller or, for staff, for any student.
func SubmitLeaveRequest(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leave service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitLeaveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Submit(r.Context(), actor, leave.SubmitInput{
			StudentID: body.StudentID,
			LeaveType: body.LeaveType,
			Priority:  body.Priority,
			StartDate: body.StartDate,
			EndDate:   body.EndDate,
			Reason:    body.Reason,
			Documents: body.Documents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func GetLeaveRequest(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leave service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), actor, chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

func ApproveLeaveRequest(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return leaveUnavailable(logg)
	}
	return decideLeaveRequest(svc.Approve, logg)
}

func RejectLeaveRequest(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return leaveUnavailable(logg)
	}
	return decideLeaveRequest(svc.Reject, logg)
}

func BulkApproveLeaveRequests(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return leaveUnavailable(logg)
	}
	return bulkDecideLeaveRequests(svc.BulkApprove, logg)
}

func BulkRejectLeaveRequests(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return leaveUnavailable(logg)
	}
	return bulkDecideLeaveRequests(svc.BulkReject, logg)
}

// LeaveStatistics aggregates over the working set narrowed by the same filters as the list.
func LeaveStatistics(svc leave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leave service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := parseLeaveFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Statistics(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

type singleDecision func(ctx context.Context, actor leave.Actor, id string, comment *string) (*leave.LeaveRequest, error)

type bulkDecision func(ctx context.Context, actor leave.Actor, ids []string, comment *string) (*leave.BulkResult, error)

func leaveUnavailable(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leave service unavailable"))
	}
}

func decideLeaveRequest(decide singleDecision, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body decisionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		updated, err := decide(r.Context(), actor, chi.URLParam(r, "requestId"), body.Comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func bulkDecideLeaveRequests(decide bulkDecision, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bulkDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := decide(r.Context(), actor, body.IDs, body.Comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseLeaveFilter(r *http.Request) (leave.FilterSpec, error) {
	q := r.URL.Query()
	filter := leave.FilterSpec{
		Search:     validators.SanitizeString(q.Get("search"), maxSearchLength),
		Department: strings.TrimSpace(q.Get("department")),
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := enums.ParseLeaveStatus(raw)
		if err != nil {
			return filter, queryError("status", err)
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("leaveType")); raw != "" && !strings.EqualFold(raw, "all") {
		lt, err := enums.ParseLeaveType(raw)
		if err != nil {
			return filter, queryError("leaveType", err)
		}
		filter.LeaveType = &lt
	}
	if raw := strings.TrimSpace(q.Get("priority")); raw != "" && !strings.EqualFold(raw, "all") {
		priority, err := enums.ParseLeavePriority(raw)
		if err != nil {
			return filter, queryError("priority", err)
		}
		filter.Priority = &priority
	}
	if strings.EqualFold(filter.Department, "all") {
		filter.Department = ""
	}

	start, err := validators.ParseQueryDate(r, "startDate")
	if err != nil {
		return filter, err
	}
	end, err := validators.ParseQueryDate(r, "endDate")
	if err != nil {
		return filter, err
	}
	filter.DateRange = leave.DateRange{Start: start, End: end}
	return filter, nil
}

func parseLeaveSort(r *http.Request) (leave.SortSpec, error) {
	q := r.URL.Query()
	var spec leave.SortSpec
	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		field, err := leave.ParseSortField(raw)
		if err != nil {
			return spec, queryError("sortBy", err)
		}
		spec.Field = field
	}
	if raw := strings.TrimSpace(q.Get("sortDirection")); raw != "" {
		dir, err := leave.ParseSortDirection(raw)
		if err != nil {
			return spec, queryError("sortDirection", err)
		}
		spec.Direction = dir
	}
	return spec, nil
}

func queryError(field string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query parameter").
		WithDetails(map[string]any{"field": field, "error": err.Error()})
}
