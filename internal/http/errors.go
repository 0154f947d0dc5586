package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"planeja/internal/core"
	"planeja/internal/insights"
	applog "planeja/internal/log"
	"planeja/internal/services"
	"planeja/internal/settings"
)

var validationErrors = []error{
	core.ErrEmptyName,
	core.ErrEmptyGoal,
	core.ErrInvalidAmount,
	core.ErrInvalidPrice,
	core.ErrInvalidDate,
	core.ErrInvalidPriority,
	core.ErrInvalidQuantity,
	core.ErrNameTooLong,
	settings.ErrInvalid,
}

// errorResponse classifies err into a client-facing response. Anything
// unrecognised is logged and reported as a 500.
func errorResponse(r *http.Request, err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, core.ErrListNotFound):
		return NotFoundError("lista não encontrada")
	case errors.Is(err, core.ErrProductNotFound):
		return NotFoundError("produto não encontrado")
	case errors.Is(err, services.ErrDraftNotFound):
		return NotFoundError(services.ErrDraftNotFound.Error())
	case errors.Is(err, settings.ErrUnknownSection):
		return NotFoundError(err.Error())
	case errors.Is(err, services.ErrInsightsDisabled):
		return ErrorResponse(http.StatusConflict, "insights desativados nas configurações")
	case errors.Is(err, insights.ErrDraftUnavailable):
		return ErrorResponse(http.StatusBadGateway, insights.ErrDraftUnavailable.Error())
	case errors.Is(err, errEmptyBody):
		return BadRequestError(err.Error())
	case errors.Is(err, errBodyTooLarge):
		return ErrorResponse(http.StatusRequestEntityTooLarge, err.Error())
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return ValidationError(err.Error())
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) || isUnknownFieldError(err) {
		return BadRequestError("JSON inválido: " + err.Error())
	}

	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err)
	return InternalError()
}

// isUnknownFieldError matches the untyped error DisallowUnknownFields returns.
func isUnknownFieldError(err error) bool {
	const prefix = "json: unknown field "
	msg := err.Error()
	return len(msg) >= len(prefix) && msg[:len(prefix)] == prefix
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(r, err).Write(w)
}
