package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-commerce/meridian/internal/platform/httpx"
	"github.com/meridian-commerce/meridian/internal/shared"
)

// Handler wires HTTP endpoints for the allocation engine.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	idem     *shared.IdempotencyStore
	validate *validator.Validate
}

// NewHandler constructs the inventory handler. The idempotency store is
// optional; without it the Idempotency-Key header is ignored.
func NewHandler(logger *slog.Logger, service *Service, idem *shared.IdempotencyStore) *Handler {
	return &Handler{logger: logger, service: service, idem: idem, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/adjustments", h.handleAdjust)
	r.Post("/reservations", h.handleReserve)
	r.Post("/reservations/release", h.handleRelease)
	r.Post("/bookings", h.handleBook)
	r.Post("/bookings/reverse", h.handleReverseBooking)
	r.Put("/warehouse-stock", h.handleSetWarehouseStock)
	r.Get("/history", h.handleHistory)
	r.Get("/availability", h.handleAvailability)
}

type componentRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type adjustmentRequest struct {
	ProductID     int64              `json:"product_id" validate:"required,gt=0"`
	Delta         int                `json:"delta"`
	CombinationID int64              `json:"combination_id" validate:"omitempty,gt=0"`
	Components    []componentRequest `json:"components" validate:"dive"`
	Message       string             `json:"message" validate:"max=500"`
	RefID         string             `json:"ref_id" validate:"omitempty,uuid"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" && h.idem != nil {
		if err := h.idem.CheckAndInsert(r.Context(), idemKey, "inventory"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.JSON(w, http.StatusOK, map[string]any{"status": "already processed"})
				return
			}
			h.respondError(w, "idempotency check", err)
			return
		}
	}
	sel := Selection{CombinationID: req.CombinationID}
	for _, c := range req.Components {
		sel.Components = append(sel.Components, ComponentRef{ProductID: c.ProductID, Quantity: c.Quantity})
	}
	err := h.service.AdjustInventory(r.Context(), AdjustmentInput{
		ProductID: req.ProductID,
		Delta:     req.Delta,
		Selection: sel,
		Message:   req.Message,
		RefID:     req.RefID,
	})
	if err != nil {
		if idemKey != "" && h.idem != nil {
			// Let the client retry with the same key.
			_ = h.idem.Delete(r.Context(), idemKey)
		}
		h.respondError(w, "adjust inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type reservationRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.ReserveInventory(r.Context(), req.ProductID, req.Quantity); err != nil {
		h.respondError(w, "reserve inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UnblockReservedInventory(r.Context(), req.ProductID, req.Quantity); err != nil {
		h.respondError(w, "unblock inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type bookingRequest struct {
	ProductID   int64  `json:"product_id" validate:"required,gt=0"`
	WarehouseID int64  `json:"warehouse_id" validate:"required,gt=0"`
	Quantity    int    `json:"quantity"`
	Message     string `json:"message" validate:"max=500"`
}

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.BookReservedInventory(r.Context(), req.ProductID, req.WarehouseID, req.Quantity, req.Message); err != nil {
		h.respondError(w, "book inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type reverseBookingRequest struct {
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	ShipmentItemID int64  `json:"shipment_item_id" validate:"required,gt=0"`
	Message        string `json:"message" validate:"max=500"`
}

func (h *Handler) handleReverseBooking(w http.ResponseWriter, r *http.Request) {
	var req reverseBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	reversed, err := h.service.ReverseBookedInventory(r.Context(), req.ProductID, req.ShipmentItemID, req.Message)
	if err != nil {
		h.respondError(w, "reverse booking", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reversed": reversed})
}

type warehouseStockRequest struct {
	ProductID   int64  `json:"product_id" validate:"required,gt=0"`
	WarehouseID int64  `json:"warehouse_id" validate:"required,gt=0"`
	Stock       int    `json:"stock_quantity" validate:"gte=0"`
	Message     string `json:"message" validate:"max=500"`
}

func (h *Handler) handleSetWarehouseStock(w http.ResponseWriter, r *http.Request) {
	var req warehouseStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SetWarehouseStock(r.Context(), req.ProductID, req.WarehouseID, req.Stock, req.Message); err != nil {
		h.respondError(w, "set warehouse stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := HistoryFilter{
		ProductID:     parseID(q.Get("product_id")),
		WarehouseID:   parseID(q.Get("warehouse_id")),
		CombinationID: parseID(q.Get("combination_id")),
		Page:          int(parseID(q.Get("page"))),
		PerPage:       int(parseID(q.Get("per_page"))),
	}
	entries, pagination, err := h.service.History(r.Context(), filter)
	if err != nil {
		h.respondError(w, "stock history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": pagination,
	})
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID := parseID(q.Get("product_id"))
	if productID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id is required")
		return
	}
	total, err := h.service.Availability(r.Context(), productID, parseID(q.Get("warehouse_id")))
	if err != nil {
		h.respondError(w, "availability", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "available": total})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrProductRequired), errors.Is(err, ErrBundleDepthExceeded):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseID(s string) int64 {
	if s == "" {
		return 0
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
