package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/sendbox"
	"github.com/kingdavidadedeji10/float-business/internal/shipping"
)

type QuoteClient interface {
	Quote(ctx context.Context, req sendbox.QuoteRequest) ([]sendbox.Quote, error)
}

// DeliveryHandler exposes pre-purchase quoting and the direct booking API.
// Both share the dispatcher's method-selection rule with the webhook path.
type DeliveryHandler struct {
	Courier    QuoteClient
	Dispatcher *shipping.Dispatcher
	Logger     *zap.Logger
}

type quoteReq struct {
	OriginAddress      orders.Address `json:"origin_address"`
	DestinationAddress orders.Address `json:"destination_address"`
	Weight             float64        `json:"weight"`
	SizeCategory       string         `json:"size_category"`
}

type bookReq struct {
	OrderID            string         `json:"order_id"`
	OriginAddress      orders.Address `json:"origin_address"`
	DestinationAddress orders.Address `json:"destination_address"`
	Weight             float64        `json:"weight"`
	SizeCategory       string         `json:"size_category"`
	SenderName         string         `json:"sender_name"`
	SenderPhone        string         `json:"sender_phone"`
	ReceiverName       string         `json:"receiver_name"`
	ReceiverPhone      string         `json:"receiver_phone"`
	ReceiverEmail      string         `json:"receiver_email"`
	ItemDescription    string         `json:"item_description"`
}

type bookResp struct {
	DeliveryID            string  `json:"delivery_id"`
	ShipmentID            string  `json:"shipment_id"`
	TrackingCode          string  `json:"tracking_code"`
	CourierName           string  `json:"courier_name"`
	DeliveryMethod        string  `json:"delivery_method"`
	EstimatedDeliveryDate *string `json:"estimated_delivery_date,omitempty"`
}

func (h *DeliveryHandler) Register(r *chi.Mux) {
	r.Post("/delivery/quote", h.quote)
	r.Post("/delivery/book", h.book)
}

func (h *DeliveryHandler) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OriginAddress.State == "" || req.DestinationAddress.State == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing addresses"})
		return
	}
	if req.SizeCategory == "" {
		req.SizeCategory = sendbox.DefaultSizeCategory
	}
	if req.Weight <= 0 {
		req.Weight = sendbox.DefaultWeight
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	quotes, err := h.Courier.Quote(ctx, sendbox.QuoteRequest{
		Origin:      party(req.OriginAddress),
		Destination: party(req.DestinationAddress),
		Weight:      req.Weight,
		PackageSize: req.SizeCategory,
	})
	if err != nil {
		h.Logger.Error("delivery quote failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to get delivery quote"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quotes": quotes})
}

func (h *DeliveryHandler) book(w http.ResponseWriter, r *http.Request) {
	var req bookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderID == "" || req.OriginAddress.State == "" || req.DestinationAddress.State == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	delivery, err := h.Dispatcher.Book(ctx, shipping.BookingParams{
		OrderID:         req.OrderID,
		Origin:          req.OriginAddress,
		Destination:     req.DestinationAddress,
		Weight:          req.Weight,
		SizeCategory:    req.SizeCategory,
		SenderName:      req.SenderName,
		SenderPhone:     req.SenderPhone,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
		ReceiverEmail:   req.ReceiverEmail,
		ItemDescription: req.ItemDescription,
	})
	switch {
	case errors.Is(err, orders.ErrDeliveryExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "delivery already exists for order"})
	case err != nil:
		h.Logger.Error("shipment booking failed", zap.String("order_id", req.OrderID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to book shipment"})
	default:
		writeJSON(w, http.StatusOK, bookResp{
			DeliveryID:            delivery.ID,
			ShipmentID:            delivery.ShipmentID,
			TrackingCode:          delivery.TrackingCode,
			CourierName:           delivery.CourierName,
			DeliveryMethod:        delivery.DeliveryMethod,
			EstimatedDeliveryDate: delivery.EstimatedDeliveryDate,
		})
	}
}

func party(a orders.Address) sendbox.Party {
	return sendbox.Party{Street: a.Street, City: a.City, State: a.State, Country: a.Country}
}
