package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/luxehome-backend/api/middleware"
	"github.com/angelmondragon/luxehome-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
)

func requireUser(r *http.Request) (uuid.UUID, error) {
	id, _ := middleware.ActorFromContext(r.Context())
	if id == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return *id, nil
}

func requireSession(r *http.Request) (string, error) {
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return sid, nil
}

func viewerFrom(r *http.Request) orders.Viewer {
	id, role := middleware.ActorFromContext(r.Context())
	return orders.Viewer{
		SessionID: middleware.SessionIDFromContext(r.Context()),
		UserID:    id,
		Role:      role,
	}
}
