package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/checkout"
	"github.com/kingdavidadedeji10/float-business/internal/orders"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Logger   *zap.Logger
}

type checkoutReq struct {
	ProductID         string            `json:"product_id"`
	StoreID           string            `json:"store_id"`
	Quantity          int               `json:"quantity"`
	VariantSelections map[string]string `json:"variant_selections,omitempty"`
	DeliveryMethod    string            `json:"delivery_method"`
	DeliveryFee       int64             `json:"delivery_fee"` // kobo
	CustomerName      string            `json:"customer_name"`
	CustomerPhone     string            `json:"customer_phone"`
	CustomerEmail     string            `json:"customer_email,omitempty"`
	CustomerAddress   *orders.Address   `json:"customer_address,omitempty"`
}

type checkoutResp struct {
	OrderID          string `json:"order_id"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	Total            int64  `json:"total"` // kobo
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.create)
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	res, err := h.Checkout.Checkout(ctx, checkout.Request{
		ProductID:         req.ProductID,
		StoreID:           req.StoreID,
		Quantity:          req.Quantity,
		VariantSelections: req.VariantSelections,
		DeliveryMethod:    req.DeliveryMethod,
		DeliveryFeeKobo:   req.DeliveryFee,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		CustomerEmail:     req.CustomerEmail,
		CustomerAddress:   req.CustomerAddress,
	})
	switch {
	case errors.Is(err, checkout.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, checkout.ErrProductNotFound), errors.Is(err, checkout.ErrStoreNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		h.Logger.Error("checkout failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "checkout failed"})
	default:
		writeJSON(w, http.StatusOK, checkoutResp{
			OrderID:          res.OrderID,
			Reference:        res.Reference,
			AuthorizationURL: res.AuthorizationURL,
			Total:            res.TotalKobo,
		})
	}
}
