package sendbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the Sendbox shipping API with bearer-token auth.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Party is one end of a shipment on the wire. Name/phone/email are only
// required for bookings.
type Party struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type QuoteRequest struct {
	Origin      Party
	Destination Party
	Weight      float64
	PackageSize string
}

type Quote struct {
	CourierName    string  `json:"courier_name"`
	DeliveryMethod string  `json:"delivery_method"`
	Price          float64 `json:"price"`
	EstimatedDays  int     `json:"estimated_days"`
}

type BookingRequest struct {
	Origin          Party
	Destination     Party
	Weight          float64
	PackageSize     string
	ItemDescription string
}

type BookingResult struct {
	ShipmentID            string `json:"shipment_id"`
	TrackingCode          string `json:"tracking_code"`
	CourierName           string `json:"courier_name"`
	EstimatedDeliveryDate string `json:"estimated_delivery_date"`
}

// WebhookEvent is an inbound courier status callback.
type WebhookEvent struct {
	TrackingCode string `json:"tracking_code"`
	Status       string `json:"status"`
	Description  string `json:"description,omitempty"`
}

// SignatureHeader carries the optional HMAC-SHA512 hex digest of the raw
// courier webhook body.
const SignatureHeader = "x-sendbox-signature"

// Quote fetches candidate rates. The delivery type sent to the provider is
// derived from the shared method rule.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) ([]Quote, error) {
	method := DetermineMethod(req.PackageSize, req.Origin.State, req.Destination.State)
	body := map[string]any{
		"origin":        wireParty(req.Origin, false),
		"destination":   wireParty(req.Destination, false),
		"weight":        req.Weight,
		"package_size":  req.PackageSize,
		"delivery_type": method,
	}
	var out struct {
		Rates []Quote `json:"rates"`
	}
	if err := c.post(ctx, "/shipping/rates", body, &out); err != nil {
		return nil, err
	}
	return out.Rates, nil
}

// Book creates a shipment and returns the provider's booking details.
func (c *Client) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	method := DetermineMethod(req.PackageSize, req.Origin.State, req.Destination.State)
	body := map[string]any{
		"origin":           wireParty(req.Origin, true),
		"destination":      wireParty(req.Destination, true),
		"weight":           req.Weight,
		"package_size":     req.PackageSize,
		"delivery_type":    method,
		"item_description": req.ItemDescription,
	}
	var out BookingResult
	if err := c.post(ctx, "/shipping/shipments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Track fetches the provider's current view of a shipment.
func (c *Client) Track(ctx context.Context, trackingCode string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/shipping/track/"+trackingCode, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendbox track: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sendbox track: http %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sendbox track: decode: %w", err)
	}
	return out, nil
}

func wireParty(p Party, booking bool) map[string]any {
	country := p.Country
	if country == "" {
		country = "Nigeria"
	}
	m := map[string]any{
		"street":  p.Street,
		"city":    p.City,
		"state":   p.State,
		"country": country,
	}
	if booking {
		m["name"] = p.Name
		m["phone"] = p.Phone
		if p.Email != "" {
			m["email"] = p.Email
		}
	}
	return m
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
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendbox %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendbox %s: http %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("sendbox %s: decode: %w", path, err)
		}
	}
	return nil
}
