package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/redisx"
)

// OrdersHandler serves the confirmation and tracking pages: a full order view
// from Postgres, and cheap status polls answered from the projector's Redis
// caches with a DB fallback.
type OrdersHandler struct {
	Orders     *orders.Repo
	Deliveries *orders.DeliveryRepo
	Catalog    *orders.CatalogRepo
	Redis      *redis.Client
	Logger     *zap.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders/{reference}", h.getOrder)
	r.Get("/orders/{reference}/status", h.getOrderStatus)
	r.Get("/deliveries/{trackingCode}/status", h.getTrackingStatus)
}

type orderView struct {
	Order    *orders.Order    `json:"order"`
	Delivery *orders.Delivery `json:"delivery,omitempty"`
	Product  *productSummary  `json:"product,omitempty"`
	Store    *storeSummary    `json:"store,omitempty"`
}

type productSummary struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url,omitempty"`
	Price    int64   `json:"price"`
}

type storeSummary struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing reference"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.FindByReferenceOrID(ctx, reference)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if err != nil {
		h.Logger.Error("order lookup failed", zap.String("reference", reference), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order lookup failed"})
		return
	}

	view := orderView{Order: order}
	if order.DeliveryMethod == orders.DeliveryMethodDelivery {
		if d, err := h.Deliveries.FindByOrderID(ctx, order.ID); err == nil {
			view.Delivery = d
		}
	}
	if order.ProductID != nil {
		if p, err := h.Catalog.GetProduct(ctx, *order.ProductID); err == nil {
			view.Product = &productSummary{Name: p.Name, ImageURL: p.ImageURL, Price: p.Price}
		}
	}
	if st, err := h.Catalog.GetStore(ctx, order.StoreID); err == nil {
		view.Store = &storeSummary{Name: st.Name, Slug: st.Slug}
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first
	key := fmt.Sprintf(redisx.KeyOrderStatus, reference)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	order, err := h.Orders.FindByReferenceOrID(ctx, reference)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order lookup failed"})
		return
	}
	b, _ := json.Marshal(map[string]any{"status": order.Status})
	_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, order.ID), b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) getTrackingStatus(w http.ResponseWriter, r *http.Request) {
	trackingCode := chi.URLParam(r, "trackingCode")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyTrackingStatus, trackingCode)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	d, err := h.Deliveries.FindByTrackingCode(ctx, trackingCode)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "tracking code not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "delivery lookup failed"})
		return
	}
	b, _ := json.Marshal(map[string]any{"status": d.Status, "order_id": d.OrderID})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
