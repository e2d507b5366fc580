package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/usecase"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	usecase.CodeValidation:         http.StatusBadRequest,
	usecase.CodeInvalidAmount:      http.StatusBadRequest,
	usecase.CodeInvalidRecord:      http.StatusBadRequest,
	usecase.CodeInvalidCredentials: http.StatusUnauthorized,
	usecase.CodeInsufficientCredit: http.StatusPaymentRequired,
	usecase.CodeNotAdmin:           http.StatusForbidden,
	usecase.CodeNotOwner:           http.StatusForbidden,
	usecase.CodeUserNotFound:       http.StatusNotFound,
	usecase.CodeLeadNotFound:       http.StatusNotFound,
	usecase.CodeEmailAlreadyExists: http.StatusConflict,
	usecase.CodeNoLeadsAvailable:   http.StatusConflict,
	usecase.CodeInvalidStatus:      http.StatusUnprocessableEntity,
	usecase.CodeInvalidTransition:  http.StatusUnprocessableEntity,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response body", zap.Int("status", status), zap.Error(err))
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// writeError maps use case errors to responses. Anything that is not a
// domain error is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeErrorCode(w, status, de.Code, de.Message)
		return
	}

	code := "INTERNAL_ERROR"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	logger.Error("request failed", zap.String("code", code), zap.Error(err))
	writeErrorCode(w, http.StatusInternalServerError, code, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, usecase.CodeValidation, "invalid JSON body")
		return false
	}
	return true
}

// leadResponse adds the Swedish status label shown in the dashboard.
type leadResponse struct {
	entity.Lead
	StatusLabel string `json:"status_label"`
}

func newLeadResponse(l entity.Lead) leadResponse {
	return leadResponse{Lead: l, StatusLabel: l.Status.Label()}
}

func newLeadResponses(leads []entity.Lead) []leadResponse {
	out := make([]leadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, newLeadResponse(l))
	}
	return out
}
