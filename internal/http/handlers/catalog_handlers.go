package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
)

func parseCategoryFilter(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("category_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

// ListServices is public; only active services show unless ?all=true.
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	categoryID, ok := parseCategoryFilter(r)
	if !ok {
		response.BadRequest(w, "Invalid category_id")
		return
	}
	activeOnly := r.URL.Query().Get("all") != "true"

	services, err := h.serviceRepo.List(r.Context(), categoryID, activeOnly, limit, offset)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"services": services,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	svc, err := h.serviceRepo.GetByID(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if svc == nil {
		response.NotFound(w, "Service not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var svc domain.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if strings.TrimSpace(svc.Name) == "" {
		response.BadRequest(w, "Name is required")
		return
	}
	if svc.DurationMinutes <= 0 {
		response.BadRequest(w, "duration_minutes must be positive")
		return
	}
	if svc.Price < 0 {
		response.BadRequest(w, "price must be non-negative")
		return
	}

	created, err := h.serviceRepo.Create(r.Context(), &svc)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	var patch domain.ServicePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if patch.DurationMinutes != nil && *patch.DurationMinutes <= 0 {
		response.BadRequest(w, "duration_minutes must be positive")
		return
	}
	if patch.Price != nil && *patch.Price < 0 {
		response.BadRequest(w, "price must be non-negative")
		return
	}

	svc, err := h.serviceRepo.Update(r.Context(), id, patch)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if svc == nil {
		response.NotFound(w, "Service not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, svc)
}

// DeleteService deactivates rather than removes, so booking history stays
// intact.
func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	done, err := h.serviceRepo.Deactivate(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if !done {
		response.NotFound(w, "Service not found or already inactive")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	categoryID, ok := parseCategoryFilter(r)
	if !ok {
		response.BadRequest(w, "Invalid category_id")
		return
	}
	activeOnly := r.URL.Query().Get("all") != "true"

	products, err := h.productRepo.List(r.Context(), categoryID, activeOnly, limit, offset)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid product ID")
		return
	}

	product, err := h.productRepo.GetByID(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if product == nil {
		response.NotFound(w, "Product not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, product)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if strings.TrimSpace(product.Name) == "" {
		response.BadRequest(w, "Name is required")
		return
	}
	if product.Price < 0 || product.Stock < 0 {
		response.BadRequest(w, "price and stock must be non-negative")
		return
	}

	created, err := h.productRepo.Create(r.Context(), &product)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid product ID")
		return
	}

	var patch domain.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if patch.Price != nil && *patch.Price < 0 {
		response.BadRequest(w, "price must be non-negative")
		return
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		response.BadRequest(w, "stock must be non-negative")
		return
	}

	product, err := h.productRepo.Update(r.Context(), id, patch)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if product == nil {
		response.NotFound(w, "Product not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, product)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	var kind *domain.CategoryKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k := domain.CategoryKind(raw)
		if k != domain.CategoryService && k != domain.CategoryProduct {
			response.BadRequest(w, "kind must be service or product")
			return
		}
		kind = &k
	}

	categories, err := h.categoryRepo.List(r.Context(), kind)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, categories)
}

type categoryReq struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		response.BadRequest(w, "Name is required")
		return
	}
	kind := domain.CategoryKind(req.Kind)
	if kind != domain.CategoryService && kind != domain.CategoryProduct {
		response.BadRequest(w, "kind must be service or product")
		return
	}

	category, err := h.categoryRepo.Create(r.Context(), req.Name, kind)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handlers) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.BadRequest(w, "Name is required")
		return
	}

	category, err := h.categoryRepo.Rename(r.Context(), id, req.Name)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if category == nil {
		response.NotFound(w, "Category not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, category)
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	deleted, err := h.categoryRepo.Delete(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if !deleted {
		response.NotFound(w, "Category not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
