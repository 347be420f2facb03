// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package mirror provides the HTTP delivery layer for preference sync.

# Security

All endpoints require an authenticated session credential provided by the
RequireAuth middleware; the identity is always taken from the credential,
never from the request body, so one client can never write another's
document.
*/
package mirror

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/meridia-health/meridia/internal/platform/request"
	"github.com/meridia-health/meridia/internal/platform/respond"
	"github.com/meridia-health/meridia/internal/prefs"
)

// Handler implements the HTTP layer for the preference mirror.
type Handler struct {
	mirrorService *Service
}

// NewHandler constructs a new mirror [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{mirrorService: service}
}

// Routes returns a [chi.Router] configured with the mirror's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/preferences", handler.getPreferences)
	router.Put("/preferences", handler.putPreferences)

	return router
}

/*
GET /api/v1/user/preferences.

Description: Returns the last mirrored document for the authenticated
identity, or the default document when nothing was ever written.

Response:
  - 200: prefs.Document
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getPreferences(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.mirrorService.Get(request.Context(), identityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, document)
}

/*
PUT /api/v1/user/preferences.

Description: Validates and stores the full document in the body, replacing
any previous version for the authenticated identity.

Response:
  - 200: Preferences: The stored record
  - 400: ErrValidation: Malformed JSON or constraint violation
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) putPreferences(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Decode onto the defaults so a sparse document from an older client
	// still stores complete.
	document := prefs.DefaultDocument()
	if err := requestutil.DecodeJSON(request, &document); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.mirrorService.Put(request.Context(), identityID, document)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}
