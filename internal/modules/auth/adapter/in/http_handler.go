package in

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authdto "watchless/internal/modules/auth/dto"
	authin "watchless/internal/modules/auth/port/in"
	"watchless/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase authin.Usecase
}

func NewHTTPHandler(usecase authin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

// Routes mounts the /api/auth endpoints.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/profile", h.profile)
	})
}

// RequireAuth rejects requests without a valid bearer token and exposes the
// caller to downstream handlers.
func (h *HTTPHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.usecase.Authenticate(r.Context(), httpx.BearerToken(r))
		if err != nil {
			httpx.Fail(w, r, "authenticate", err, httpx.MsgInvalidToken)
			return
		}
		ctx := httpx.WithCaller(r.Context(), httpx.Caller{UserID: principal.UserID, Email: principal.Email})
		ctx = withPrincipal(ctx, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Credential string `json:"credential"`
}

func (h *HTTPHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeBody(r, &req); err != nil || strings.TrimSpace(req.Credential) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Google credential is required")
		return
	}
	out, err := h.usecase.Login(r.Context(), authdto.LoginInput{Credential: req.Credential})
	if err != nil {
		httpx.Fail(w, r, "login", err, httpx.MsgAuthFailed)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "Login successful")
}

func (h *HTTPHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.Logout(r.Context(), httpx.BearerToken(r)); err != nil {
		httpx.Fail(w, r, "logout", err, "Logout failed")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, nil, "Logout successful")
}

func (h *HTTPHandler) profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgAccessTokenRequired)
		return
	}
	out, err := h.usecase.Profile(r.Context(), principal)
	if err != nil {
		httpx.Fail(w, r, "profile", err, "Failed to fetch profile")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "")
}
