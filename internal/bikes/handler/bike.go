package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"rentabike/internal/bikes/service"
	httputil "rentabike/pkg/http"
	"rentabike/pkg/logger"
	"rentabike/pkg/middleware"
	"rentabike/pkg/model"
)

const catalogCacheControl = "public, max-age=300"

type BikeHandler struct {
	service service.BikeService
	admin   middleware.Guard
	log     *logger.Logger
}

func NewBikeHandler(service service.BikeService, admin middleware.Guard, log *logger.Logger) *BikeHandler {
	if admin == nil {
		admin = middleware.Open
	}
	return &BikeHandler{
		service: service,
		admin:   admin,
		log:     log,
	}
}

func (h *BikeHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bikes", h.ListAvailable)

	router.GET("/api/v1/admin/bikes", h.admin(h.GetAll))
	router.GET("/api/v1/admin/bikes/id/:id", h.admin(h.GetByID))
	router.POST("/api/v1/admin/bikes", h.admin(h.Create))
	router.PATCH("/api/v1/admin/bikes/id/:id", h.admin(h.Update))
	router.DELETE("/api/v1/admin/bikes/id/:id", h.admin(h.Delete))
}

func (h *BikeHandler) ListAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.service.ListAvailable(r.Context())
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAvailable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BikeHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bikes, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bikes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BikeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bike, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, bike); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BikeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BikeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	bike, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, bike); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BikeHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BikeUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	bike, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, bike); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BikeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BikeHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
