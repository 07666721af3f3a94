package in

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	analyticsdto "watchless/internal/modules/analytics/dto"
	analyticsin "watchless/internal/modules/analytics/port/in"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase analyticsin.Usecase
}

func NewHTTPHandler(usecase analyticsin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

// Routes mounts the /api/analytics endpoints. Callers must already be
// authenticated.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Get("/daily/{date}", h.daily)
	r.Get("/weekly/{week}", h.weekly)
	r.Get("/monthly/{month}", h.monthly)
}

func (h *HTTPHandler) daily(w http.ResponseWriter, r *http.Request) {
	input, ok := reportInput(w, r, "date")
	if !ok {
		return
	}
	out, err := h.usecase.Daily(r.Context(), input)
	if err != nil {
		fail(w, r, "daily_analytics", err, "Invalid date, expected YYYY-MM-DD", "Failed to get daily analytics")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "Daily analytics retrieved successfully")
}

func (h *HTTPHandler) weekly(w http.ResponseWriter, r *http.Request) {
	input, ok := reportInput(w, r, "week")
	if !ok {
		return
	}
	out, err := h.usecase.Weekly(r.Context(), input)
	if err != nil {
		fail(w, r, "weekly_analytics", err, "Invalid week, expected YYYY-Www or YYYY-MM-DD", "Failed to get weekly analytics")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "Weekly analytics retrieved successfully")
}

func (h *HTTPHandler) monthly(w http.ResponseWriter, r *http.Request) {
	input, ok := reportInput(w, r, "month")
	if !ok {
		return
	}
	out, err := h.usecase.Monthly(r.Context(), input)
	if err != nil {
		fail(w, r, "monthly_analytics", err, "Invalid month, expected YYYY-MM", "Failed to get monthly analytics")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, out, "Monthly analytics retrieved successfully")
}

func reportInput(w http.ResponseWriter, r *http.Request, param string) (analyticsdto.ReportInput, bool) {
	caller, ok := httpx.CallerFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgAccessTokenRequired)
		return analyticsdto.ReportInput{}, false
	}
	return analyticsdto.ReportInput{UserID: caller.UserID, Period: chi.URLParam(r, param)}, true
}

func fail(w http.ResponseWriter, r *http.Request, operation string, err error, invalid, fallback string) {
	if errors.Is(err, apperrors.ErrInvalidInput) {
		httpx.Fail(w, r, operation, err, invalid)
		return
	}
	httpx.Fail(w, r, operation, err, fallback)
}
