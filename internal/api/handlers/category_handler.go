package handlers

import (
	"net/http"

	"github.com/focoshop/focoshop-be/internal/services"
)

// CategoryHandler handles HTTP requests related to categories.
type CategoryHandler struct {
	service services.CategoryServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// GetAll handles the request to get all categories.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "category")
		return
	}
	respondJSON(w, r, http.StatusOK, categories)
}

// Get handles the request to get a single category by its ID.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "category")
		return
	}
	respondJSON(w, r, http.StatusOK, category)
}

// Create handles the request to create a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload services.CategoryInput
	if err := decodeJSON(r, &payload, true); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), payload)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "category")
		return
	}
	respondJSON(w, r, http.StatusCreated, category)
}

// Update handles the request to rename a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var payload services.CategoryInput
	if err := decodeJSON(r, &payload, true); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), id, payload)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "category")
		return
	}
	respondJSON(w, r, http.StatusOK, category)
}

// Delete handles the request to delete a category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
