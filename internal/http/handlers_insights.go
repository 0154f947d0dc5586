package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"planeja/internal/core"
)

func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Insights.Latest(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(snap).Write(w)
}

// handleRefreshInsights schedules a refresh and answers 202 right away;
// the board is updated when the analysis finishes.
func (s *Server) handleRefreshInsights(w http.ResponseWriter, r *http.Request) {
	mode, err := s.deps.Insights.Enqueue(r.Context(), "manual")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusAccepted).Body(map[string]string{"dispatch": mode}).Write(w)
}

type draftRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	text := sanitizeInput(req.Text)
	if text == "" {
		ValidationError("descreva a lista que deseja criar").Write(w)
		return
	}

	pending, err := s.deps.Drafts.Generate(r.Context(), text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(pending).Write(w)
}

// handleConfirmDraft saves the pending draft. A body, when present, is an
// edited draft that replaces the generated one.
func (s *Server) handleConfirmDraft(w http.ResponseWriter, r *http.Request) {
	var edited *core.ListDraft
	raw, err := readBody(w, r)
	switch {
	case errors.Is(err, errEmptyBody):
	case err != nil:
		s.fail(w, r, err)
		return
	default:
		var d core.ListDraft
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			s.fail(w, r, err)
			return
		}
		edited = &d
	}

	l, err := s.deps.Drafts.Confirm(r.Context(), r.PathValue("id"), edited)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).
		Header("Location", "/api/lists/"+l.ID).
		Body(s.view(l, time.Now())).
		Write(w)
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	s.deps.Drafts.Discard(r.PathValue("id"))
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
