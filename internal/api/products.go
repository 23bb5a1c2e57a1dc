package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dvhalloran/cartload/internal/importer"
	"github.com/dvhalloran/cartload/internal/model"
	"github.com/dvhalloran/cartload/internal/repository"
)

// productInput is the JSON body for create/update. Fields are pointers on
// update so absent keys leave the stored value untouched.
type productInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Category    *string `json:"category"`
}

func (in *productInput) asRow() map[string]string {
	row := map[string]string{}
	if in.Name != nil {
		row["name"] = *in.Name
	}
	if in.Description != nil {
		row["description"] = *in.Description
	}
	if in.Status != nil {
		row["status"] = *in.Status
	}
	if in.Category != nil {
		row["category"] = *in.Category
	}
	return row
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	products, err := s.products.ListProducts(r.Context(), page, limit)
	if err != nil {
		log.Printf("list products: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: products})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	product, err := s.products.GetProduct(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Product not found.")
		return
	}
	if err != nil {
		log.Printf("get product %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: product})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	// Same rules as the bulk-import row validator, so a product is valid (or
	// not) regardless of which door it came through.
	product, msgs := importer.ValidateRow(in.asRow())
	if len(msgs) > 0 {
		respondError(w, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}
	if err := s.products.CreateProduct(r.Context(), &product); err != nil {
		if errors.Is(err, repository.ErrDuplicateProduct) {
			respondError(w, http.StatusConflict, "Product name already exists.")
			return
		}
		log.Printf("create product: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Data: product})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	existing, err := s.products.GetProduct(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Product not found.")
		return
	}
	if err != nil {
		log.Printf("get product %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	applyInput(existing, &in)
	row := map[string]string{
		"name":        existing.Name,
		"description": existing.Description,
		"status":      existing.Status,
		"category":    existing.Category,
	}
	validated, msgs := importer.ValidateRow(row)
	if len(msgs) > 0 {
		respondError(w, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}
	validated.ID = existing.ID
	validated.CreatedAt = existing.CreatedAt
	if err := s.products.UpdateProduct(r.Context(), &validated); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, http.StatusNotFound, "Product not found.")
		case errors.Is(err, repository.ErrDuplicateProduct):
			respondError(w, http.StatusConflict, "Product name already exists.")
		default:
			log.Printf("update product %d: %v", id, err)
			respondError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: validated})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if err := s.products.SoftDeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Product not found.")
			return
		}
		log.Printf("delete product %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Success: true, Message: "Product deleted."})
}

func applyInput(p *model.Product, in *productInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "Invalid product id.")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
