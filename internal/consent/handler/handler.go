// Package handler exposes the consent engine over HTTP. It only decodes,
// validates, and maps errors; every decision is made by the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carebridge/internal/audit"
	"carebridge/internal/consent/models"
	"carebridge/internal/consent/service"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/httputil"
	"carebridge/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Sweeper,AuditTrail

// Service is the consent engine as seen by the HTTP layer.
type Service interface {
	CreateRequest(ctx context.Context, p models.NewConsentRequestParams) (*models.ConsentRequest, error)
	GetRequest(ctx context.Context, requestID id.ConsentRequestID) (*models.ConsentRequest, error)
	UpdateRequest(ctx context.Context, requestID id.ConsentRequestID, upd models.RequestUpdate) (*models.ConsentRequest, error)
	DeleteRequest(ctx context.Context, requestID id.ConsentRequestID) error
	DenyRequest(ctx context.Context, requestID id.ConsentRequestID) error
	ListRequestsByPatient(ctx context.Context, patientID id.PatientID, status *models.Status) ([]*models.ConsentRequest, error)
	ListActiveRequestsByHIP(ctx context.Context, hipID id.HIPID) ([]*models.ConsentRequest, error)

	Grant(ctx context.Context, requestID id.ConsentRequestID, p models.GrantParams) (*models.ConsentArtefact, error)
	Revoke(ctx context.Context, artefactID id.ConsentArtefactID) error
	GetArtefact(ctx context.Context, artefactID id.ConsentArtefactID) (*models.ConsentArtefact, error)
	VerifySignature(ctx context.Context, artefactID id.ConsentArtefactID) (bool, error)
	ListValidArtefactsByPatient(ctx context.Context, patientID id.PatientID) ([]*models.ConsentArtefact, error)

	CheckAccess(ctx context.Context, artefactID id.ConsentArtefactID, categories []string) (bool, error)
	RecordAccess(ctx context.Context, artefactID id.ConsentArtefactID, categories []string, ac models.AccessContext) (*models.AccessRecord, error)
	ValidateAndRecord(ctx context.Context, artefactID id.ConsentArtefactID, categories []string, ac models.AccessContext) (service.Decision, *models.AccessRecord, error)
	RemainingAccess(ctx context.Context, artefactID id.ConsentArtefactID) (*int, error)
	ListAccessRecords(ctx context.Context, artefactID id.ConsentArtefactID) ([]*models.AccessRecord, error)
}

// Sweeper runs one expiry sweep on demand.
type Sweeper interface {
	RunOnce(ctx context.Context) (int, error)
}

// AuditTrail reads recorded audit events for one request or artefact.
type AuditTrail interface {
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
}

// Handler serves the /consent routes.
type Handler struct {
	consent Service
	logger  *slog.Logger
}

// New creates a consent Handler.
func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{consent: consent, logger: logger}
}

// Register mounts the consent routes. accessMiddleware wraps only the
// access-check endpoints, which see the most traffic.
func (h *Handler) Register(r chi.Router, accessMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/consent", func(r chi.Router) {
		r.Post("/requests", h.HandleCreateRequest)
		r.Get("/requests/{id}", h.HandleGetRequest)
		r.Patch("/requests/{id}", h.HandleUpdateRequest)
		r.Delete("/requests/{id}", h.HandleDeleteRequest)
		r.Post("/requests/{id}/grant", h.HandleGrant)
		r.Post("/requests/{id}/deny", h.HandleDeny)

		r.Get("/patients/{patientId}/requests", h.HandleListPatientRequests)
		r.Get("/patients/{patientId}/artefacts", h.HandleListPatientArtefacts)
		r.Get("/hips/{hipId}/requests", h.HandleListHIPRequests)

		r.Get("/artefacts/{id}", h.HandleGetArtefact)
		r.Post("/artefacts/{id}/revoke", h.HandleRevoke)
		r.Get("/artefacts/{id}/remaining", h.HandleRemainingAccess)
		r.Get("/artefacts/{id}/accesses", h.HandleListAccesses)
		r.Get("/artefacts/{id}/signature", h.HandleVerifySignature)

		r.Group(func(r chi.Router) {
			r.Use(accessMiddleware...)
			r.Post("/artefacts/{id}/check", h.HandleCheckAccess)
			r.Post("/artefacts/{id}/access", h.HandleRecordAccess)
			r.Post("/artefacts/{id}/validate", h.HandleValidateAccess)
		})
	})
}

// RegisterAdmin mounts operator routes. Callers put them behind admin auth.
func (h *Handler) RegisterAdmin(r chi.Router, sweeper Sweeper) {
	r.Post("/admin/consent/sweep", func(w http.ResponseWriter, req *http.Request) {
		h.handleSweep(w, req, sweeper)
	})
}

// RegisterAuditTrail mounts the audit read route. Callers put it behind
// admin auth.
func (h *Handler) RegisterAuditTrail(r chi.Router, trail AuditTrail) {
	r.Get("/admin/consent/audit/{subject}", func(w http.ResponseWriter, req *http.Request) {
		h.handleAuditTrail(w, req, trail)
	})
}

func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := httputil.Bind[CreateConsentRequest](w, r, h.logger)
	if !ok {
		return
	}
	created, err := h.consent.CreateRequest(ctx, body.ToParams())
	if err != nil {
		h.fail(ctx, w, "failed to create consent request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.consentRequestID(w, r)
	if !ok {
		return
	}
	found, err := h.consent.GetRequest(ctx, reqID)
	if err != nil {
		h.fail(ctx, w, "failed to load consent request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(found))
}

func (h *Handler) HandleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.consentRequestID(w, r)
	if !ok {
		return
	}
	body, ok := httputil.Bind[UpdateConsentRequest](w, r, h.logger)
	if !ok {
		return
	}
	updated, err := h.consent.UpdateRequest(ctx, reqID, body.ToUpdate())
	if err != nil {
		h.fail(ctx, w, "failed to update consent request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(updated))
}

func (h *Handler) HandleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.consentRequestID(w, r)
	if !ok {
		return
	}
	if err := h.consent.DeleteRequest(ctx, reqID); err != nil {
		h.fail(ctx, w, "failed to delete consent request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.consentRequestID(w, r)
	if !ok {
		return
	}
	body, ok := httputil.Bind[GrantConsentRequest](w, r, h.logger)
	if !ok {
		return
	}
	artefact, err := h.consent.Grant(ctx, reqID, body.ToParams())
	if err != nil {
		h.fail(ctx, w, "failed to grant consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toArtefactResponse(artefact))
}

func (h *Handler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.consentRequestID(w, r)
	if !ok {
		return
	}
	if err := h.consent.DenyRequest(ctx, reqID); err != nil {
		h.fail(ctx, w, "failed to deny consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: models.StatusDenied.String()})
}

func (h *Handler) HandleListPatientRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, err := id.ParsePatientID(chi.URLParam(r, "patientId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := parseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	found, err := h.consent.ListRequestsByPatient(ctx, patientID, status)
	if err != nil {
		h.fail(ctx, w, "failed to list consent requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestList(found))
}

func (h *Handler) HandleListPatientArtefacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, err := id.ParsePatientID(chi.URLParam(r, "patientId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	found, err := h.consent.ListValidArtefactsByPatient(ctx, patientID)
	if err != nil {
		h.fail(ctx, w, "failed to list consent artefacts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toArtefactList(found))
}

func (h *Handler) HandleListHIPRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hipID, err := id.ParseHIPID(chi.URLParam(r, "hipId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	found, err := h.consent.ListActiveRequestsByHIP(ctx, hipID)
	if err != nil {
		h.fail(ctx, w, "failed to list active consent requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestList(found))
}

func (h *Handler) HandleGetArtefact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	found, err := h.consent.GetArtefact(ctx, artID)
	if err != nil {
		h.fail(ctx, w, "failed to load consent artefact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toArtefactResponse(found))
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	if err := h.consent.Revoke(ctx, artID); err != nil {
		h.fail(ctx, w, "failed to revoke consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: models.StatusRevoked.String()})
}

func (h *Handler) HandleCheckAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	body, ok := httputil.Bind[CheckAccessRequest](w, r, h.logger)
	if !ok {
		return
	}
	allowed, err := h.consent.CheckAccess(ctx, artID, body.Categories)
	if err != nil {
		h.fail(ctx, w, "failed to check access", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CheckAccessResponse{Allowed: allowed})
}

func (h *Handler) HandleRecordAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	body, ok := httputil.Bind[RecordAccessRequest](w, r, h.logger)
	if !ok {
		return
	}
	rec, err := h.consent.RecordAccess(ctx, artID, body.Categories, body.ToAccessContext())
	if err != nil {
		h.fail(ctx, w, "failed to record access", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAccessRecordResponse(rec))
}

// HandleValidateAccess checks access and records it when allowed. A denial
// is a 200 with allowed=false.
func (h *Handler) HandleValidateAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	body, ok := httputil.Bind[RecordAccessRequest](w, r, h.logger)
	if !ok {
		return
	}
	d, rec, err := h.consent.ValidateAndRecord(ctx, artID, body.Categories, body.ToAccessContext())
	if err != nil {
		h.fail(ctx, w, "failed to validate access", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toValidateResponse(d, rec))
}

func (h *Handler) HandleRemainingAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	remaining, err := h.consent.RemainingAccess(ctx, artID)
	if err != nil {
		h.fail(ctx, w, "failed to load remaining access", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RemainingAccessResponse{Remaining: remaining})
}

func (h *Handler) HandleListAccesses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	recs, err := h.consent.ListAccessRecords(ctx, artID)
	if err != nil {
		h.fail(ctx, w, "failed to list access records", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccessList(recs))
}

func (h *Handler) HandleVerifySignature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artID, ok := h.artefactID(w, r)
	if !ok {
		return
	}
	valid, err := h.consent.VerifySignature(ctx, artID)
	if err != nil {
		h.fail(ctx, w, "failed to verify artefact signature", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SignatureResponse{Valid: valid})
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request, sweeper Sweeper) {
	ctx := r.Context()
	actor := requestcontext.AdminActor(ctx)
	n, err := sweeper.RunOnce(ctx)
	if err != nil {
		// A partial sweep still reports what it changed.
		h.logger.ErrorContext(ctx, "expiry sweep finished with errors",
			"request_id", requestcontext.RequestID(ctx),
			"admin_actor", actor,
			"expired", n,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "manual expiry sweep",
		"request_id", requestcontext.RequestID(ctx),
		"admin_actor", actor,
		"expired", n,
	)
	httputil.WriteJSON(w, http.StatusOK, SweepResponse{Expired: n})
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request, trail AuditTrail) {
	ctx := r.Context()
	subject := chi.URLParam(r, "subject")
	if _, err := uuid.Parse(subject); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "subject must be a consent request or artefact ID"))
		return
	}
	events, err := trail.ListBySubject(ctx, subject)
	if err != nil {
		h.fail(ctx, w, "failed to read audit trail", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditTrailResponse(events))
}

func (h *Handler) consentRequestID(w http.ResponseWriter, r *http.Request) (id.ConsentRequestID, bool) {
	reqID, err := id.ParseConsentRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ConsentRequestID{}, false
	}
	return reqID, true
}

func (h *Handler) artefactID(w http.ResponseWriter, r *http.Request) (id.ConsentArtefactID, bool) {
	artID, err := id.ParseConsentArtefactID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ConsentArtefactID{}, false
	}
	return artID, true
}

// fail logs at Warn for caller mistakes and Error for server faults, then
// writes the mapped error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{"request_id", requestcontext.RequestID(ctx), "error", err}
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
