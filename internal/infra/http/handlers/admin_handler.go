package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/infra/http/middleware"
	"github.com/reverio/leadgen/internal/usecase"
)

type CreditAdder interface {
	Execute(ctx context.Context, input usecase.AddCreditsInput) (*usecase.AddCreditsOutput, error)
}

// FeedRunner loads every configured lead source into the pool once.
type FeedRunner interface {
	RunOnce(ctx context.Context) (usecase.IngestReport, error)
}

type AdminHandler struct {
	Credits CreditAdder
	Users   Authenticator
	Leads   LeadQuerier
	Feed    FeedRunner
	Logger  *zap.Logger
}

func NewAdminHandler(credits CreditAdder, users Authenticator, leads LeadQuerier, feed FeedRunner, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{Credits: credits, Users: users, Leads: leads, Feed: feed, Logger: logger}
}

func (h *AdminHandler) HandleAddCredits(w http.ResponseWriter, r *http.Request) {
	var req usecase.AddCreditsInput
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.Credits.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	if s, ok := middleware.SessionFrom(r.Context()); ok {
		h.Logger.Info("admin added credits",
			zap.String("admin_id", s.UserID),
			zap.String("user_id", out.UserID),
			zap.Int("added", out.Added),
		)
	}
	middleware.RecordCreditsAdded(out.Added)
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) HandleGetUserID(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeErrorCode(w, http.StatusBadRequest, usecase.CodeValidation, "email query parameter is required")
		return
	}

	user, err := h.Users.FindUserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"credits": user.Credits,
	})
}

func (h *AdminHandler) HandleCheckLeads(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Leads.Pool(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) HandleLoadExcel(w http.ResponseWriter, r *http.Request) {
	report, err := h.Feed.RunOnce(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
