package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/infra/http/middleware"
	"github.com/reverio/leadgen/internal/usecase"
)

type Registerer interface {
	Execute(ctx context.Context, input usecase.RegisterUserInput) (*usecase.UserOutput, error)
}

type Authenticator interface {
	Execute(ctx context.Context, input usecase.AuthenticateUserInput) (*usecase.UserOutput, error)
	FindUser(ctx context.Context, id string) (*usecase.UserOutput, error)
	FindUserByEmail(ctx context.Context, email string) (*usecase.UserOutput, error)
}

type SessionIssuer interface {
	Issue(userID, email string, role entity.Role) (string, time.Time, error)
}

type AuthHandler struct {
	Register     Registerer
	Authenticate Authenticator
	Sessions     SessionIssuer
	SecureCookie bool
	Logger       *zap.Logger
}

func NewAuthHandler(register Registerer, authenticate Authenticator, sessions SessionIssuer, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		Register:     register,
		Authenticate: authenticate,
		Sessions:     sessions,
		Logger:       logger,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *usecase.UserOutput `json:"user"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Register.Execute(r.Context(), usecase.RegisterUserInput{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.Logger.Info("user registered", zap.String("user_id", user.ID))
	h.startSession(w, http.StatusCreated, user)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, admin bool) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Authenticate.Execute(r.Context(), usecase.AuthenticateUserInput{
		Email:        req.Email,
		Password:     req.Password,
		RequireAdmin: admin,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.startSession(w, http.StatusOK, user)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	user, err := h.Authenticate.FindUser(r.Context(), s.UserID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, status int, user *usecase.UserOutput) {
	token, expires, err := h.Sessions.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, LoginResponse{Token: token, ExpiresAt: expires, User: user})
}
