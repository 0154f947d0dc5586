package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.deps.Settings.Get()).Write(w)
}

// handleUpdateSettings merges the body into one section, e.g.
// PATCH /api/settings/notifications {"reminderDays": 7}.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.deps.Settings.Update(r.Context(), r.PathValue("section"), json.RawMessage(body))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.deps.Settings.ToggleTheme(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]string{"theme": theme}).Write(w)
}

// handleExport serves the backup as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	backup, err := s.deps.Settings.Export(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Attachment(backup.Filename).Body(json.RawMessage(backup.Body)).Write(w)
}

// handleClear wipes every list and resets settings. Requires ?confirm=true.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		ConfirmationRequired("apagar todos os dados").Write(w)
		return
	}
	if err := s.deps.Settings.Clear(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
