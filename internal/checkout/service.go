package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/paystack"
)

var (
	ErrInvalidRequest  = errors.New("invalid checkout request")
	ErrProductNotFound = errors.New("product not found")
	ErrStoreNotFound   = errors.New("store not found")
)

type OrderStore interface {
	Create(ctx context.Context, o *orders.Order) error
	SetReference(ctx context.Context, orderID, reference string) error
}

type CatalogStore interface {
	GetProductInStore(ctx context.Context, productID, storeID string) (*orders.Product, error)
	GetStore(ctx context.Context, storeID string) (*orders.Store, error)
}

type PaymentInitializer interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
}

// Service creates pending orders and initializes hosted payment sessions for
// them. Payment-provider failures propagate: the customer is waiting on this
// result.
type Service struct {
	Orders  OrderStore
	Catalog CatalogStore
	// Payments initializes the hosted checkout; split settlement uses the
	// store's subaccount when linked.
	Payments PaymentInitializer
	// BaseURL is the public app URL the payer is redirected back to.
	BaseURL string
	Logger  *zap.Logger
}

type Request struct {
	ProductID         string
	StoreID           string
	Quantity          int
	VariantSelections map[string]string
	DeliveryMethod    string
	DeliveryFeeKobo   int64
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	CustomerAddress   *orders.Address
}

type Result struct {
	OrderID          string
	Reference        string
	AuthorizationURL string
	TotalKobo        int64
}

func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	if req.ProductID == "" || req.StoreID == "" || req.Quantity <= 0 ||
		req.CustomerName == "" || req.CustomerPhone == "" {
		return nil, ErrInvalidRequest
	}
	if req.DeliveryMethod != orders.DeliveryMethodPickup &&
		req.DeliveryMethod != orders.DeliveryMethodDelivery {
		return nil, fmt.Errorf("%w: unknown delivery method %q", ErrInvalidRequest, req.DeliveryMethod)
	}

	product, err := s.Catalog.GetProductInStore(ctx, req.ProductID, req.StoreID)
	if errors.Is(err, orders.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	store, err := s.Catalog.GetStore(ctx, req.StoreID)
	if errors.Is(err, orders.ErrNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	// Price comes from the catalog, never from the client.
	unitPrice := product.Price
	subtotal := unitPrice * int64(req.Quantity)
	fee := int64(0)
	if req.DeliveryMethod == orders.DeliveryMethodDelivery {
		fee = req.DeliveryFeeKobo
	}
	total := subtotal + fee

	order := &orders.Order{
		StoreID:           req.StoreID,
		ProductID:         &product.ID,
		Quantity:          req.Quantity,
		VariantSelections: req.VariantSelections,
		UnitPrice:         unitPrice,
		Subtotal:          subtotal,
		DeliveryMethod:    req.DeliveryMethod,
		DeliveryFee:       fee,
		Total:             total,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		CustomerAddress:   req.CustomerAddress,
		Status:            orders.OrderPending,
	}
	if req.CustomerEmail != "" {
		order.CustomerEmail = &req.CustomerEmail
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	email := req.CustomerEmail
	if email == "" {
		// Guest checkout: the provider requires an email.
		email = req.CustomerPhone + "@guest.floatbusiness.com"
	}
	subaccount := ""
	if store.SubaccountCode != nil {
		subaccount = *store.SubaccountCode
	}
	payment, err := s.Payments.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountKobo:  total,
		Subaccount:  subaccount,
		Metadata:    map[string]any{"order_id": order.ID},
		CallbackURL: s.BaseURL + "/order/" + order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	if err := s.Orders.SetReference(ctx, order.ID, payment.Reference); err != nil {
		return nil, fmt.Errorf("save payment reference: %w", err)
	}

	s.Logger.Info("checkout initiated",
		zap.String("order_id", order.ID),
		zap.String("reference", payment.Reference),
		zap.Int64("total_kobo", total))

	return &Result{
		OrderID:          order.ID,
		Reference:        payment.Reference,
		AuthorizationURL: payment.AuthorizationURL,
		TotalKobo:        total,
	}, nil
}
