package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/", h.catalog) // ?source=local|shopify
		r.Post("/", h.adjust)
		r.Get("/low-stock", h.lowStock)

		r.Post("/items", h.register)
		r.Put("/items/{sku}", h.overwrite)
		r.Get("/items/{sku}/movements", h.movements)
	})
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Catalog(r.Context(), r.URL.Query().Get("source"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"inventory": entries})
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	entry, err := h.service.Adjust(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, entry)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	entry, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, entry)
}

func (h *Handler) overwrite(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req OverwriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	entry, err := h.service.Overwrite(r.Context(), sku, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, entry)
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.service.Movements(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"movements": movements})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.LowStock(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrSKUNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrSKUExists):
		respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrStockFloor):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrShopifyUnavailable):
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
