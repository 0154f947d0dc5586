package http

import (
	"errors"
	"net/http"
	"time"

	"planeja/internal/core"
	"planeja/internal/planner"
)

// listView is a list plus everything the dashboard derives from it.
// Display holds the formatted (or masked) amounts for the current settings.
type listView struct {
	core.ShoppingList
	Planned        core.Money     `json:"planned"`
	Remaining      core.Money     `json:"remaining"`
	Progress       float64        `json:"progress"`
	Funded         bool           `json:"funded"`
	CompletedCount int            `json:"completedCount"`
	DaysLeft       *int           `json:"daysLeft,omitempty"`
	Display        displayAmounts `json:"display"`
}

type displayAmounts struct {
	Saved     string `json:"saved"`
	Planned   string `json:"planned"`
	Remaining string `json:"remaining"`
}

func (s *Server) view(l core.ShoppingList, now time.Time) listView {
	format := s.deps.Settings.Formatter()
	v := listView{
		ShoppingList:   l,
		Planned:        l.PlannedTotal(),
		Remaining:      l.Remaining(),
		Progress:       l.Progress(),
		Funded:         l.Funded(),
		CompletedCount: l.CompletedCount(),
	}
	if days, ok := l.DaysLeft(now); ok {
		v.DaysLeft = &days
	}
	v.Display = displayAmounts{
		Saved:     format(l.SavedAmount),
		Planned:   format(v.Planned),
		Remaining: format(v.Remaining),
	}
	return v
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	lists := s.deps.Planner.Lists()
	views := make([]listView, 0, len(lists))
	for _, l := range lists {
		views = append(views, s.view(l, now))
	}
	NewJSONResponse().Body(views).Write(w)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	l, err := s.deps.Planner.List(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(s.view(l, time.Now())).Write(w)
}

type createListRequest struct {
	Name       string `json:"name"`
	Goal       string `json:"goal"`
	TargetDate string `json:"targetDate"`
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	l, err := s.deps.Planner.CreateList(r.Context(),
		sanitizeInput(req.Name), sanitizeInput(req.Goal), sanitizeInput(req.TargetDate))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).
		Header("Location", "/api/lists/"+l.ID).
		Body(s.view(l, time.Now())).
		Write(w)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var patch planner.ListPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	l, err := s.deps.Planner.UpdateList(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(s.view(l, time.Now())).Write(w)
}

// handleDeleteList is destructive and requires ?confirm=true. Unknown ids
// still succeed.
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		ConfirmationRequired("excluir a lista").Write(w)
		return
	}
	if err := s.deps.Planner.DeleteList(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// addProductRequest keeps price as a pointer so a missing price declines
// the product while an explicit 0 is a free item.
type addProductRequest struct {
	Name     string        `json:"name"`
	Price    *core.Money   `json:"price"`
	Quantity int           `json:"quantity"`
	Link     string        `json:"link,omitempty"`
	Store    string        `json:"store,omitempty"`
	Notes    string        `json:"notes,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Priority core.Priority `json:"priority,omitempty"`
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Price == nil {
		s.fail(w, r, core.ErrInvalidPrice)
		return
	}

	p, err := s.deps.Planner.AddProduct(r.Context(), r.PathValue("id"), planner.ProductInput{
		Name:     sanitizeInput(req.Name),
		Price:    *req.Price,
		Quantity: req.Quantity,
		Link:     req.Link,
		Store:    req.Store,
		Notes:    sanitizeInput(req.Notes),
		Tags:     req.Tags,
		Priority: req.Priority,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(p).Write(w)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch planner.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.Planner.UpdateProduct(r.Context(), r.PathValue("id"), r.PathValue("pid"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(p).Write(w)
}

func (s *Server) handleToggleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Planner.ToggleProduct(r.Context(), r.PathValue("id"), r.PathValue("pid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Body(p).Write(w)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Planner.DeleteProduct(r.Context(), r.PathValue("id"), r.PathValue("pid")); err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

type depositRequest struct {
	Amount core.Money `json:"amount"`
}

type depositResponse struct {
	Deposit core.Deposit `json:"deposit"`
	List    listView     `json:"list"`
}

func (s *Server) handleAddDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, core.ErrInvalidPrice) {
			err = core.ErrInvalidAmount
		}
		s.fail(w, r, err)
		return
	}

	listID := r.PathValue("id")
	d, err := s.deps.Planner.AddDeposit(r.Context(), listID, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	l, err := s.deps.Planner.List(listID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).
		Body(depositResponse{Deposit: d, List: s.view(l, time.Now())}).
		Write(w)
}

type overviewResponse struct {
	core.Overview
	Display struct {
		TotalPlanned string `json:"totalPlanned"`
		TotalSaved   string `json:"totalSaved"`
	} `json:"display"`
	NextCloseDate string `json:"nextCloseDate"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	format := s.deps.Settings.Formatter()

	resp := overviewResponse{Overview: s.deps.Planner.Overview()}
	resp.Display.TotalPlanned = format(resp.TotalPlanned)
	resp.Display.TotalSaved = format(resp.TotalSaved)
	resp.NextCloseDate = s.deps.Settings.NextCloseDate(time.Now()).Format(core.DateLayout)

	NewJSONResponse().Body(resp).Write(w)
}
