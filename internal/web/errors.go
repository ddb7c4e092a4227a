package web

// errors.go provides unified error responses for the API.
//
// Every error is logged with its technical detail and request ID, then
// mapped through core.MapError so clients only see a message, a suggested
// action and a support code.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/juryclean/internal/core"
	"github.com/JonMunkholm/juryclean/internal/logging"
)

// ErrorResponse is the JSON body of every API error.
// Log is set when a run finished without cleaning any table.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Action  string           `json:"action,omitempty"`
	Code    string           `json:"code"`
	RunID   string           `json:"run_id,omitempty"`
	Log     []core.LogRecord `json:"log,omitempty"`
}

// respondError logs err and writes its user-facing form with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	respondBatchError(w, r, err, statusCode, nil)
}

// respondBatchError is respondError carrying the run log of batch, if any.
func respondBatchError(w http.ResponseWriter, r *http.Request, err error, statusCode int, batch *core.Batch) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	if batch != nil {
		resp.RunID = batch.RunID
		resp.Log = batch.Log()
	}
	writeJSON(w, r, statusCode, resp)
}

// statusFor picks the HTTP status for an error returned by a clean run.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoCleanedTables):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v with statusCode. Encoding errors are only logged
// since the header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
