package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/metrics"
	"github.com/gwan-project/landing-auth/internal/service"
)

// AuthHandler handles registration, activation, login and profile requests.
type AuthHandler struct {
	registration *service.RegistrationService
	activation   *service.ActivationService
	login        *service.LoginService
	profile      *service.ProfileService
	logger       zerolog.Logger
}

// AuthHandlerConfig contains the dependencies for the auth handler.
type AuthHandlerConfig struct {
	Registration *service.RegistrationService
	Activation   *service.ActivationService
	Login        *service.LoginService
	Profile      *service.ProfileService
	Logger       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		registration: cfg.Registration,
		activation:   cfg.Activation,
		login:        cfg.Login,
		profile:      cfg.Profile,
		logger:       cfg.Logger.With().Str("handler", "auth").Logger(),
	}
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type registerResponse struct {
	User           domain.Summary `json:"user"`
	ActivationCode string         `json:"activation_code,omitempty"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid request body"})
		return
	}

	out, err := h.registration.Register(r.Context(), service.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	writeSuccess(w, http.StatusCreated, "registration successful, activation code sent", registerResponse{
		User:           out.Account.Summary(),
		ActivationCode: out.ActivationCode,
	})
}

type activateRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	User  domain.Summary `json:"user"`
	Token string         `json:"token"`
}

// Activate handles POST /api/auth/activate/{userID}.
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid request body"})
		return
	}

	out, err := h.activation.Activate(r.Context(), service.ActivateInput{
		AccountID: chi.URLParam(r, "userID"),
		Code:      req.Code,
	})
	if err != nil {
		metrics.ActivationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	metrics.ActivationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	writeSuccess(w, http.StatusOK, "account activated", sessionResponse{
		User:  out.Account.Summary(),
		Token: out.Token,
	})
}

type loginRequestRequest struct {
	Contact string `json:"contact"`
}

type loginRequestResponse struct {
	Channel   string `json:"channel"`
	LoginCode string `json:"login_code,omitempty"`
}

// LoginRequest handles POST /api/auth/login-request.
func (h *AuthHandler) LoginRequest(w http.ResponseWriter, r *http.Request) {
	var req loginRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid request body"})
		return
	}

	out, err := h.login.RequestLogin(r.Context(), service.RequestLoginInput{Contact: req.Contact})
	if err != nil {
		metrics.LoginRequestsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	metrics.LoginRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	writeSuccess(w, http.StatusOK, "login code sent", loginRequestResponse{
		Channel:   out.Channel,
		LoginCode: out.LoginCode,
	})
}

type loginValidateRequest struct {
	Contact string `json:"contact"`
	Code    string `json:"code"`
}

// LoginValidate handles POST /api/auth/login-validate.
func (h *AuthHandler) LoginValidate(w http.ResponseWriter, r *http.Request) {
	var req loginValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid request body"})
		return
	}

	out, err := h.login.ValidateLogin(r.Context(), service.ValidateLoginInput{
		Contact: req.Contact,
		Code:    req.Code,
	})
	if err != nil {
		metrics.LoginValidationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	metrics.LoginValidationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	writeSuccess(w, http.StatusOK, "login successful", sessionResponse{
		User:  out.Account.Summary(),
		Token: out.Token,
	})
}

type meResponse struct {
	User            domain.Summary `json:"user"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
}

// Me handles GET /api/auth/me. The account is re-read so the response
// reflects the live status, not the one frozen in the token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.profile.Me(r.Context(), auth.AccountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := meResponse{User: account.Summary()}
	if account.ProfileImageURL != nil {
		resp.ProfileImageURL = *account.ProfileImageURL
	}
	writeSuccess(w, http.StatusOK, "", resp)
}

// CompleteProfile handles POST /api/auth/complete-profile.
func (h *AuthHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	upload, err := imageFromRequest(r, "image")
	if err != nil {
		writeError(w, err)
		return
	}
	defer upload.close()

	account, err := h.profile.CompleteProfile(r.Context(), service.CompleteProfileInput{
		AccountID: auth.AccountIDFromContext(r.Context()),
		Image:     upload.ImageUpload,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := meResponse{User: account.Summary()}
	if account.ProfileImageURL != nil {
		resp.ProfileImageURL = *account.ProfileImageURL
	}
	writeSuccess(w, http.StatusOK, "profile completed", resp)
}
