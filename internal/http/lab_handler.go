package http

import (
	"net/http"

	"github.com/ctgpost/MarketingWebTools/internal/session"
	"go.uber.org/zap"
)

// LabHandler starts content lab generations and site audits. Work runs in
// the background; clients poll the session for the result.
type LabHandler struct {
	responder
}

func NewLabHandler(logger *zap.Logger) *LabHandler {
	return &LabHandler{responder: newResponder(logger)}
}

type TipRequestDTO struct {
	Goal string `json:"goal"`
}

type CaptionRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type KeywordsRequestDTO struct {
	Description string `json:"description"`
}

type AuditRequestDTO struct {
	URL string `json:"url"`
}

func (h *LabHandler) Tip(w http.ResponseWriter, r *http.Request) {
	var req TipRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	s := sessionFromContext(r.Context())
	h.accepted(w, s, s.RequestTip(r.Context(), req.Goal))
}

func (h *LabHandler) Caption(w http.ResponseWriter, r *http.Request) {
	var req CaptionRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	s := sessionFromContext(r.Context())
	if _, err := s.RequestCaption(r.Context(), req.ProductID); err != nil {
		h.handleProductError(w, err)
		return
	}
	h.accepted(w, s, true)
}

func (h *LabHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	s := sessionFromContext(r.Context())
	h.accepted(w, s, s.RequestKeywords(r.Context(), req.Description))
}

func (h *LabHandler) Audit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	s := sessionFromContext(r.Context())
	h.accepted(w, s, s.RunAudit(r.Context(), req.URL))
}

// accepted answers 202 when work was started and 200 for a no-op.
func (rs responder) accepted(w http.ResponseWriter, s *session.Session, started bool) {
	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	rs.respondJSON(w, status, ActionResponse{Applied: started, Session: s.Snapshot()})
}
