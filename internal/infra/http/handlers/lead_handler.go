package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/infra/http/middleware"
	"github.com/reverio/leadgen/internal/usecase"
)

type LeadAssigner interface {
	Execute(ctx context.Context, input usecase.AssignLeadsInput) (*usecase.AssignLeadsOutput, error)
}

type StatusUpdater interface {
	Execute(ctx context.Context, input usecase.UpdateLeadStatusInput) (*entity.Lead, error)
}

type LeadQuerier interface {
	Get(ctx context.Context, userID string, leadID int64) (*entity.Lead, error)
	List(ctx context.Context, userID, status string) ([]entity.Lead, error)
	Stats(ctx context.Context, userID string) (*entity.LeadStats, error)
	Pool(ctx context.Context) (*entity.PoolStats, error)
}

type LeadHandler struct {
	Assign LeadAssigner
	Update StatusUpdater
	Query  LeadQuerier
	Logger *zap.Logger
}

func NewLeadHandler(assign LeadAssigner, update StatusUpdater, query LeadQuerier, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{Assign: assign, Update: update, Query: query, Logger: logger}
}

type GenerateLeadsRequest struct {
	Count int `json:"count"`
}

type GenerateLeadsResponse struct {
	Leads            []leadResponse `json:"leads"`
	CreditsRemaining int            `json:"credits_remaining"`
	LockedUntil      time.Time      `json:"locked_until"`
}

type MyLeadsResponse struct {
	Leads []leadResponse `json:"leads"`
	Count int            `json:"count"`
}

// HandleGenerate assigns count leads (default one) to the caller.
func (h *LeadHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	req := GenerateLeadsRequest{Count: 1}
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, usecase.CodeValidation, "invalid JSON body")
		return
	}

	out, err := h.Assign.Execute(r.Context(), usecase.AssignLeadsInput{UserID: s.UserID, Count: req.Count})
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			middleware.RecordAssignmentFailure(de.Code)
		} else {
			middleware.RecordAssignmentFailure("internal")
		}
		writeError(w, h.Logger, err)
		return
	}

	middleware.RecordLeadsAssigned(len(out.Leads))
	writeJSON(w, http.StatusOK, GenerateLeadsResponse{
		Leads:            newLeadResponses(out.Leads),
		CreditsRemaining: out.CreditsRemaining,
		LockedUntil:      out.LockedUntil,
	})
}

func (h *LeadHandler) HandleMyLeads(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	leads, err := h.Query.List(r.Context(), s.UserID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MyLeadsResponse{Leads: newLeadResponses(leads), Count: len(leads)})
}

func (h *LeadHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorCode(w, http.StatusBadRequest, usecase.CodeValidation, "lead id must be a positive integer")
		return
	}

	lead, err := h.Query.Get(r.Context(), s.UserID, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newLeadResponse(*lead))
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	var req usecase.UpdateLeadStatusInput
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = s.UserID

	lead, err := h.Update.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	middleware.RecordStatusTransition(string(lead.Status))
	writeJSON(w, http.StatusOK, newLeadResponse(*lead))
}

func (h *LeadHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	stats, err := h.Query.Stats(r.Context(), s.UserID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decodeOptionalJSON accepts an empty body and leaves v untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
