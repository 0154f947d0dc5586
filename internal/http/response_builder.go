// Package http exposes the planner, settings and AI features as a JSON API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	applog "planeja/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body with a 204
// status writes nothing.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Attachment marks the response as a file download.
func (b *JSONResponseBuilder) Attachment(filename string) *JSONResponseBuilder {
	return b.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// Write sends the response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)

	switch body := b.body.(type) {
	case nil:
		return
	case json.RawMessage:
		_, _ = w.Write(body)
	default:
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("Failed to encode response", applog.FieldComponent, applog.ComponentHTTP, applog.FieldError, err)
		}
	}
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a response carrying a single error message.
func ErrorResponse(status int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).Body(ErrorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func ValidationError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "erro interno, tente novamente")
}

// ConfirmationRequired answers destructive requests sent without confirm=true.
func ConfirmationRequired(action string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusPreconditionRequired, action+" requer confirmação: repita com ?confirm=true")
}
