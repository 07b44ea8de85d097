package handlers

import (
	"fmt"
	"net/http"
	"time"

	"playtrack/internal/service"
)

// ChildHandler serves the child registry
type ChildHandler struct {
	children *service.ChildService
}

// NewChildHandler creates a new child handler
func NewChildHandler(children *service.ChildService) *ChildHandler {
	return &ChildHandler{children: children}
}

// Register adds the child routes to mux
func (h *ChildHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/children", h.CreateChild)
	mux.HandleFunc("GET /api/children", h.ListChildren)
	mux.HandleFunc("GET /api/children/{id}", h.GetChild)
	mux.HandleFunc("PUT /api/children/{id}", h.UpdateChild)
	mux.HandleFunc("DELETE /api/children/{id}", h.DeleteChild)
}

type childRequest struct {
	Name          string `json:"name"`
	BirthDate     string `json:"birthDate"`
	GuardianEmail string `json:"guardianEmail"`
}

// toInput accepts birth dates as YYYY-MM-DD or RFC3339
func (req childRequest) toInput() (service.ChildInput, error) {
	in := service.ChildInput{Name: req.Name, GuardianEmail: req.GuardianEmail}
	if req.BirthDate == "" {
		return in, nil
	}
	birth, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		if birth, err = time.Parse(time.RFC3339, req.BirthDate); err != nil {
			return in, fmt.Errorf("birthDate must be YYYY-MM-DD")
		}
	}
	in.BirthDate = birth.UTC()
	return in, nil
}

func (h *ChildHandler) readInput(w http.ResponseWriter, r *http.Request) (service.ChildInput, bool) {
	var req childRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "Failed to decode child request", err)
		return service.ChildInput{}, false
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return service.ChildInput{}, false
	}
	return in, true
}

// CreateChild handles POST /api/children
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}
	child, err := h.children.CreateChild(in)
	if err != nil {
		respondWithServiceError(w, "Failed to create child", err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}

// ListChildren handles GET /api/children
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.ListChildren()
	if err != nil {
		respondWithServiceError(w, "Failed to list children", err)
		return
	}
	respondJSON(w, http.StatusOK, children)
}

// GetChild handles GET /api/children/{id}
func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	child, err := h.children.GetChild(r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Failed to get child", err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// UpdateChild handles PUT /api/children/{id}
func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}
	child, err := h.children.UpdateChild(r.PathValue("id"), in)
	if err != nil {
		respondWithServiceError(w, "Failed to update child", err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// DeleteChild handles DELETE /api/children/{id}
func (h *ChildHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	if err := h.children.DeleteChild(r.PathValue("id")); err != nil {
		respondWithServiceError(w, "Failed to delete child", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
