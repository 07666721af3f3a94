package in

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	viewingdto "watchless/internal/modules/viewing/dto"
	viewingin "watchless/internal/modules/viewing/port/in"
	"watchless/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase viewingin.Usecase
}

func NewHTTPHandler(usecase viewingin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

// Routes mounts the /api/sessions endpoints. Callers must already be
// authenticated.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Post("/start", h.start)
	r.Get("/active", h.active)
	r.Put("/{id}/stop", h.stop)
	r.Put("/{id}/update", h.update)
}

type showNameRequest struct {
	ShowName string `json:"showName"`
}

func (h *HTTPHandler) start(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgAccessTokenRequired)
		return
	}
	out, err := h.usecase.Start(r.Context(), caller.UserID)
	if err != nil {
		httpx.Fail(w, r, "start_session", err, "Failed to start session")
		return
	}
	if out.AlreadyActive {
		httpx.WriteSuccess(w, http.StatusOK, out.Session, "Session already active")
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, out.Session, "Session started successfully")
}

func (h *HTTPHandler) stop(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgAccessTokenRequired)
		return
	}
	var req showNameRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := h.usecase.Stop(r.Context(), viewingdto.StopInput{
		UserID:    caller.UserID,
		SessionID: chi.URLParam(r, "id"),
		ShowName:  req.ShowName,
	})
	if err != nil {
		httpx.Fail(w, r, "stop_session", err, "Failed to stop session")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "Session stopped successfully")
}

func (h *HTTPHandler) active(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgAccessTokenRequired)
		return
	}
	out, err := h.usecase.Active(r.Context(), caller.UserID)
	if err != nil {
		httpx.Fail(w, r, "active_session", err, "Failed to get active session")
		return
	}
	if out == nil {
		httpx.WriteSuccess(w, http.StatusOK, httpx.Null, "No active session")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "")
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgAccessTokenRequired)
		return
	}
	var req showNameRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := h.usecase.Update(r.Context(), viewingdto.UpdateInput{
		UserID:    caller.UserID,
		SessionID: chi.URLParam(r, "id"),
		ShowName:  req.ShowName,
	})
	if err != nil {
		httpx.Fail(w, r, "update_session", err, "Failed to update session")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "Session updated successfully")
}
