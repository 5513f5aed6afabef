package controllers

import (
	"net/http"

	"github.com/hostelhub/hostelhub-backend/api/middleware"
	"github.com/hostelhub/hostelhub-backend/internal/leave"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
)

func requireActor(r *http.Request) (leave.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return leave.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}
