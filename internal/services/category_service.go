package services

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cuentaclara/backend/internal/models"
	"github.com/cuentaclara/backend/internal/store"
)

// CategoryService manages transaction categories. Default categories ship
// with the application and cannot be deleted.
type CategoryService struct {
	store     store.Store
	validator *ValidationHelper
}

func NewCategoryService(st store.Store) *CategoryService {
	return &CategoryService{
		store:     st,
		validator: NewValidationHelper(),
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

func (cs *CategoryService) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	categories, err := cs.store.ListCategories(r.Context(), userID)
	if err != nil {
		log.Printf("[CATEGORY] Failed to list categories: %v", err)
		SendErrorResponse(w, "Failed to fetch categories", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}

func (cs *CategoryService) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req categoryRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := cs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	category := models.Category{
		UserID:      userID,
		Name:        req.Name,
		Type:        models.TransactionType(req.Type),
		Description: req.Description,
	}

	created, err := cs.store.CreateCategory(r.Context(), &category)
	if err != nil {
		log.Printf("[CATEGORY] Failed to create category: %v", err)
		SendErrorResponse(w, "Failed to create category", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusCreated, created)
}

func (cs *CategoryService) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req categoryRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := cs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	updated, err := cs.store.UpdateCategory(r.Context(), userID, chi.URLParam(r, "categoryId"),
		req.Name, req.Description, models.TransactionType(req.Type))
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	SendJSON(w, http.StatusOK, updated)
}

func (cs *CategoryService) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	categoryID := chi.URLParam(r, "categoryId")

	category, err := cs.store.GetCategory(r.Context(), userID, categoryID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	if category.IsDefault {
		SendErrorResponse(w, "Default categories cannot be deleted", http.StatusBadRequest, nil)
		return
	}

	if err := cs.store.DeleteCategory(r.Context(), userID, categoryID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{"deleted": categoryID})
}
