package planapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/loremIpsum6321/roomplanner/internal/auth"
	"github.com/loremIpsum6321/roomplanner/internal/catalog"
	"github.com/loremIpsum6321/roomplanner/internal/plan"
	"github.com/loremIpsum6321/roomplanner/internal/render"
	"github.com/loremIpsum6321/roomplanner/internal/session"
)

type Handler struct {
	service  *Service
	hub      *session.Hub
	renderer *render.Renderer
}

func NewHandler(service *Service, hub *session.Hub, renderer *render.Renderer) *Handler {
	return &Handler{service: service, hub: hub, renderer: renderer}
}

type createRequest struct {
	Name        string  `json:"name"`
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	created, err := h.service.Create(r.Context(), req.Name, req.WidthUnits, req.LengthUnits, userID)
	if err != nil {
		if errors.Is(err, plan.ErrInvalidDimension) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room dimensions must be positive"})
			return
		}
		slog.Error("create plan failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	planID := mux.Vars(r)["planId"]

	p, err := h.service.Get(r.Context(), planID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	plans, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list plans failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, plans)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	planID := mux.Vars(r)["planId"]

	if err := h.service.Delete(r.Context(), planID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	planID := mux.Vars(r)["planId"]

	doc, err := h.service.Layout(r.Context(), planID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// RenderPNG draws the plan. A live editing session takes precedence over the
// persisted layout so the image reflects unsaved pointer work in progress.
func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	planID := mux.Vars(r)["planId"]

	var (
		room    *plan.Room
		objects []*plan.Object
	)

	if sess, ok := h.hub.Session(planID); ok {
		if err := h.service.CheckAccess(r.Context(), planID, userID); err != nil {
			handleServiceError(w, err)
			return
		}
		room, objects = sess.View()
	} else {
		restoredRoom, layout, err := h.service.Restore(r.Context(), planID, userID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		room, objects = restoredRoom, layout.Objects()
	}

	w.Header().Set("Content-Type", "image/png")
	if err := h.renderer.EncodePNG(w, room, objects); err != nil {
		slog.Error("render plan failed", "plan", planID, "error", err)
	}
}

// Catalog serves the built-in furniture definitions.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
