package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the Paystack REST API. Construct it once in main and inject
// it; never share through package state.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		SecretKey:  secretKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type InitializeRequest struct {
	Email string
	// AmountKobo is the charge amount in minor units.
	AmountKobo int64
	// Subaccount routes the split share to the store owner when set.
	Subaccount  string
	Metadata    map[string]any
	CallbackURL string
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction creates a hosted payment session and returns the
// authorization URL to redirect the payer to.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body := map[string]any{
		"email":  req.Email,
		"amount": req.AmountKobo,
	}
	if req.Subaccount != "" {
		body["subaccount"] = req.Subaccount
		body["bearer"] = "subaccount"
	}
	if req.Metadata != nil {
		body["metadata"] = req.Metadata
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}

	var out InitializeResult
	if err := c.post(ctx, "/transaction/initialize", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type SubaccountRequest struct {
	BusinessName     string
	BankCode         string
	AccountNumber    string
	PercentageCharge float64
}

type SubaccountResult struct {
	SubaccountCode string `json:"subaccount_code"`
	BankName       string `json:"bank_name"`
	AccountName    string `json:"account_name"`
}

// CreateSubaccount registers a split-payment subaccount for a store's bank
// account.
func (c *Client) CreateSubaccount(ctx context.Context, req SubaccountRequest) (*SubaccountResult, error) {
	body := map[string]any{
		"business_name":     req.BusinessName,
		"bank_code":         req.BankCode,
		"account_number":    req.AccountNumber,
		"percentage_charge": req.PercentageCharge,
	}
	var out SubaccountResult
	if err := c.post(ctx, "/subaccount", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack %s: %w", path, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("paystack %s: decode response: %w", path, err)
	}
	if resp.StatusCode >= 300 || !api.Status {
		return fmt.Errorf("paystack %s: %s (http %d)", path, api.Message, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(api.Data, out); err != nil {
			return fmt.Errorf("paystack %s: decode data: %w", path, err)
		}
	}
	return nil
}
