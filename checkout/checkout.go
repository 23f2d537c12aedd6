// Package checkout drives the checkout page: address selection or creation,
// payment selection, and order submission.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/pricing"
	"go.uber.org/zap"
)

var (
	ErrMissingAddress       = fmt.Errorf("%w: no delivery address selected", errs.ErrValidation)
	ErrAddressNotFound      = fmt.Errorf("%w: selected address no longer exists", errs.ErrValidation)
	ErrEmptyCart            = fmt.Errorf("%w: cart is empty", errs.ErrValidation)
	ErrUnknownPaymentMethod = fmt.Errorf("%w: unknown payment method", errs.ErrValidation)
)

type State string

const (
	StateAddressSelection State = "address_selection"
	StateAddressCreation  State = "address_creation"
	StatePaymentSelection State = "payment_selection"
	StateOrderSubmission  State = "order_submission"
	StateSuccess          State = "success"
	StateFailure          State = "failure"
)

// Backend is the authenticated API surface checkout needs. *client.Client
// satisfies it.
type Backend interface {
	Addresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, in models.AddressInput) (*models.Address, error)
	Cart(ctx context.Context) (*models.Cart, error)
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
}

type Orchestrator struct {
	backend Backend
	logger  *zap.Logger

	state     State
	addresses []models.Address
	cart      *models.Cart
	addressID string
	payment   models.PaymentMethod
	lastErr   error
	lastOrder *models.Order
	onPlaced  func(*models.Order)
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// OnOrderPlaced registers a callback fired after a successful submission.
func OnOrderPlaced(fn func(*models.Order)) Option {
	return func(o *Orchestrator) { o.onPlaced = fn }
}

func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		logger:  zap.NewNop(),
		state:   StateAddressSelection,
		payment: models.PaymentCOD,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) Addresses() []models.Address { return o.addresses }

func (o *Orchestrator) Cart() *models.Cart { return o.cart }

func (o *Orchestrator) SelectedAddressID() string { return o.addressID }

func (o *Orchestrator) PaymentMethod() models.PaymentMethod { return o.payment }

// Err is the reason of the last failed submission, nil otherwise.
func (o *Orchestrator) Err() error { return o.lastErr }

// Order is the order created by the last successful submission.
func (o *Orchestrator) Order() *models.Order { return o.lastOrder }

// Load fetches the saved addresses and the cart. The first address is
// preselected when nothing is selected yet; with no saved address the page
// opens on the creation form.
func (o *Orchestrator) Load(ctx context.Context) error {
	addresses, err := o.backend.Addresses(ctx)
	if err != nil {
		return err
	}
	cart, err := o.backend.Cart(ctx)
	if err != nil {
		return err
	}

	o.addresses = addresses
	o.cart = cart

	if o.addressID != "" && o.findAddress(o.addressID) == nil {
		o.addressID = ""
	}
	if o.addressID == "" && len(addresses) > 0 {
		o.addressID = addresses[0].ID
	}

	if len(addresses) == 0 {
		o.state = StateAddressCreation
	} else {
		o.state = StateAddressSelection
	}
	return nil
}

func (o *Orchestrator) BeginAddressCreation() {
	o.state = StateAddressCreation
}

// CreateAddress validates the form locally, saves it and selects it.
func (o *Orchestrator) CreateAddress(ctx context.Context, in models.AddressInput) (*models.Address, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	address, err := o.backend.CreateAddress(ctx, in)
	if err != nil {
		return nil, err
	}

	o.addresses = append(o.addresses, *address)
	o.addressID = address.ID
	o.state = StatePaymentSelection
	return address, nil
}

func (o *Orchestrator) SelectAddress(id string) error {
	if o.findAddress(id) == nil {
		return ErrAddressNotFound
	}
	o.addressID = id
	o.state = StatePaymentSelection
	return nil
}

func (o *Orchestrator) SelectPayment(method models.PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
	}
	o.payment = method
	o.state = StatePaymentSelection
	return nil
}

// Totals prices the loaded cart.
func (o *Orchestrator) Totals() pricing.Totals {
	if o.cart == nil {
		return pricing.ComputeTotals(nil)
	}
	return pricing.CartTotals(o.cart.Items)
}

// PlaceOrder checks preconditions and submits the order. No request is made
// unless an address is selected, it is still in the loaded list, and the cart
// has lines.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*models.Order, error) {
	if o.addressID == "" {
		return nil, ErrMissingAddress
	}
	address := o.findAddress(o.addressID)
	if address == nil {
		return nil, ErrAddressNotFound
	}
	if o.cart == nil || len(o.cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	req := BuildOrder(o.cart.Items, *address, o.payment)

	o.state = StateOrderSubmission
	order, err := o.backend.CreateOrder(ctx, req)
	if err != nil {
		o.state = StateFailure
		o.lastErr = err
		o.logger.Warn("order submission failed",
			zap.String("address_id", address.ID),
			zap.Int64("total", req.Total),
			zap.Error(err))
		return nil, err
	}

	o.state = StateSuccess
	o.lastErr = nil
	o.lastOrder = order

	// The server empties the cart as part of order creation.
	if cart, err := o.backend.Cart(ctx); err == nil {
		o.cart = cart
	} else if !errors.Is(err, context.Canceled) {
		o.logger.Debug("cart reload after order failed", zap.Error(err))
	}

	if o.onPlaced != nil {
		o.onPlaced(order)
	}
	return order, nil
}

func (o *Orchestrator) findAddress(id string) *models.Address {
	for i := range o.addresses {
		if o.addresses[i].ID == id {
			return &o.addresses[i]
		}
	}
	return nil
}

// BuildOrder snapshots cart lines and an address into an order payload. Only
// the first product image is kept; unresolved products contribute price 0.
func BuildOrder(items []models.CartItem, address models.Address, method models.PaymentMethod) models.OrderRequest {
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		line := models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Price = item.Product.Price
			line.Image = item.Product.FirstImage()
		}
		lines = append(lines, line)
	}

	totals := pricing.CartTotals(items)
	return models.OrderRequest{
		Items:           lines,
		AddressID:       address.ID,
		ShippingAddress: address.AddressFields,
		Subtotal:        totals.Subtotal,
		ShippingCharges: totals.ShippingCharges,
		Total:           totals.Total,
		PaymentMethod:   method,
	}
}
