package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/http/middleware"
	"order-service/internal/logx"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const bodyLimit = 1 << 20

const internalMessage = "Internal server error"

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("json encode error",
			logx.String("request_id", chimw.GetReqID(r.Context())),
			logx.Err(err),
		)
	}
}

func writeData(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	writeJSON(logger, w, r, status, envelope{Success: true, Message: msg, Data: data})
}

func writeMessage(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, envelope{Success: false, Message: msg})
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the business message of err, or a generic one for unexpected errors.
func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			logx.String("request_id", chimw.GetReqID(r.Context())),
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
		writeMessage(logger, w, r, status, internalMessage)
		return
	}
	writeMessage(logger, w, r, status, apperr.Message(err, http.StatusText(status)))
}

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeMessage(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeMessage(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// actorOf returns the authenticated actor or answers 401.
func actorOf(logger logx.Logger, w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeMessage(logger, w, r, http.StatusUnauthorized, "authentication required")
		return domain.Actor{}, false
	}
	return a, true
}

type pageQuery struct {
	limit, offset *int
}

func parsePage(r *http.Request) (pageQuery, error) {
	var p pageQuery
	q := r.URL.Query()
	for name, dst := range map[string]**int{"limit": &p.limit, "offset": &p.offset} {
		s := strings.TrimSpace(q.Get(name))
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return pageQuery{}, apperr.Invalid("invalid %s", name)
		}
		*dst = &v
	}
	return p, nil
}
