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
	"github.com/kingdavidadedeji10/float-business/internal/paystack"
)

type SubaccountCreator interface {
	CreateSubaccount(ctx context.Context, req paystack.SubaccountRequest) (*paystack.SubaccountResult, error)
}

// StoresHandler links a store's bank account to a payment-provider subaccount
// so checkout can split settlements directly to the owner.
type StoresHandler struct {
	Catalog  *orders.CatalogRepo
	Payments SubaccountCreator
	Logger   *zap.Logger
}

// Platform share of every split payment, in percent.
const platformPercentageCharge = 5

type subaccountReq struct {
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
}

func (h *StoresHandler) Register(r *chi.Mux) {
	r.Post("/stores/{storeID}/subaccount", h.createSubaccount)
}

func (h *StoresHandler) createSubaccount(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req subaccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.BankCode == "" || req.AccountNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing bank details"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	store, err := h.Catalog.GetStore(ctx, storeID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
		return
	}
	if err != nil {
		h.Logger.Error("store lookup failed", zap.String("store_id", storeID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store lookup failed"})
		return
	}

	res, err := h.Payments.CreateSubaccount(ctx, paystack.SubaccountRequest{
		BusinessName:     store.Name,
		BankCode:         req.BankCode,
		AccountNumber:    req.AccountNumber,
		PercentageCharge: platformPercentageCharge,
	})
	if err != nil {
		h.Logger.Error("subaccount creation failed", zap.String("store_id", storeID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "subaccount creation failed"})
		return
	}

	err = h.Catalog.UpdateStoreSubaccount(ctx, storeID,
		res.SubaccountCode, res.BankName, req.AccountNumber, res.AccountName)
	if err != nil {
		h.Logger.Error("saving bank details failed", zap.String("store_id", storeID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save bank details"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"account_name":    res.AccountName,
		"subaccount_code": res.SubaccountCode,
	})
}
