// Package storefront ties the guest store, the API client, reconciliation and
// checkout into the session a shopper interacts with.
//
// Writes go to the server when a session token is held. Without one, or when
// the server rejects it, cart and wishlist additions land in the guest store
// and are migrated on the next login.
package storefront

import (
	"context"

	"github.com/junaidrashid-git/storefront/checkout"
	"github.com/junaidrashid-git/storefront/client"
	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/guest"
	"github.com/junaidrashid-git/storefront/kv"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/otp"
	"github.com/junaidrashid-git/storefront/reconcile"
	"go.uber.org/zap"
)

type Session struct {
	guest       *guest.Store
	credentials *guest.Credentials
	api         *client.Client
	policy      reconcile.ClearPolicy
	logger      *zap.Logger
}

type Option func(*sessionOptions)

type sessionOptions struct {
	policy     reconcile.ClearPolicy
	logger     *zap.Logger
	clientOpts []client.Option
}

// WithClearPolicy selects what happens to guest data after login.
func WithClearPolicy(p reconcile.ClearPolicy) Option {
	return func(o *sessionOptions) { o.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

func WithClientOptions(opts ...client.Option) Option {
	return func(o *sessionOptions) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New builds a session against the API at baseURL, keeping device-local state
// in store.
func New(baseURL string, store kv.Store, opts ...Option) *Session {
	o := sessionOptions{policy: reconcile.ClearAll, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	credentials := guest.NewCredentials(store)
	clientOpts := append([]client.Option{client.WithLogger(o.logger)}, o.clientOpts...)

	return &Session{
		guest:       guest.NewStore(store, guest.WithLogger(o.logger)),
		credentials: credentials,
		api:         client.New(baseURL, credentials, clientOpts...),
		policy:      o.policy,
		logger:      o.logger,
	}
}

func (s *Session) Guest() *guest.Store { return s.guest }

func (s *Session) Client() *client.Client { return s.api }

func (s *Session) SignedIn(ctx context.Context) bool {
	_, ok := s.credentials.Token(ctx)
	return ok
}

// User returns the cached profile of the signed-in user.
func (s *Session) User(ctx context.Context) (*models.User, bool) {
	return s.credentials.User(ctx)
}

// AddToCart adds to the server cart, falling back to the guest cart when the
// server requires authentication.
func (s *Session) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return errs.Validation("storefront.AddToCart", "quantity must be at least 1")
	}
	err := s.api.AddToCart(ctx, productID, quantity)
	if errs.IsAuthRequired(err) {
		s.logger.Debug("not signed in, adding to guest cart", zap.String("product_id", productID))
		return s.guest.AddToCart(ctx, productID, quantity)
	}
	return err
}

func (s *Session) AddToWishlist(ctx context.Context, productID string) error {
	err := s.api.AddToWishlist(ctx, productID)
	if errs.IsAuthRequired(err) {
		s.logger.Debug("not signed in, adding to guest wishlist", zap.String("product_id", productID))
		return s.guest.AddToWishlist(ctx, productID)
	}
	return err
}

func (s *Session) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	if s.SignedIn(ctx) {
		if quantity < 0 {
			quantity = 0
		}
		return s.api.UpdateCartQuantity(ctx, productID, quantity)
	}
	return s.guest.UpdateQuantity(ctx, productID, quantity)
}

func (s *Session) RemoveFromCart(ctx context.Context, productID string) error {
	if s.SignedIn(ctx) {
		return s.api.RemoveFromCart(ctx, productID)
	}
	return s.guest.RemoveFromCart(ctx, productID)
}

func (s *Session) RemoveFromWishlist(ctx context.Context, productID string) error {
	if s.SignedIn(ctx) {
		return s.api.RemoveFromWishlist(ctx, productID)
	}
	return s.guest.RemoveFromWishlist(ctx, productID)
}

// Wishlist returns the product ids on the wishlist.
func (s *Session) Wishlist(ctx context.Context) ([]string, error) {
	if !s.SignedIn(ctx) {
		wishlist, err := s.guest.Wishlist(ctx)
		if err != nil {
			return nil, err
		}
		return wishlist.Products, nil
	}

	items, err := s.api.Wishlist(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids, nil
}

// Cart returns the server cart when signed in. For guests the local lines are
// resolved through the public product endpoint; a product that no longer
// exists is kept with a nil Product and prices as 0.
func (s *Session) Cart(ctx context.Context) (*models.Cart, error) {
	if s.SignedIn(ctx) {
		return s.api.Cart(ctx)
	}

	local, err := s.guest.Cart(ctx)
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{Items: make([]models.CartItem, 0, len(local.Items))}
	for _, line := range local.Items {
		item := models.CartItem{ProductID: line.ProductID, Quantity: line.Quantity}
		product, err := s.api.Product(ctx, line.ProductID)
		switch {
		case err == nil:
			item.Product = product
		case errs.IsNotFound(err):
			s.logger.Debug("guest cart product not found", zap.String("product_id", line.ProductID))
		default:
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

// SendOTP asks the server to deliver a login code.
func (s *Session) SendOTP(ctx context.Context, phone string) error {
	if err := otp.ValidatePhone(phone); err != nil {
		return err
	}
	return s.api.SendOTP(ctx, phone)
}

type LoginResult struct {
	User    models.User
	Created bool
	Report  *reconcile.Report
}

// Login verifies the code, stores the session and migrates guest data into
// the account. The server registers the phone when it is new. A failure to
// migrate individual items does not fail the login; see Report.
func (s *Session) Login(ctx context.Context, phone, code string) (*LoginResult, error) {
	if err := otp.ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := otp.ValidateCode(code); err != nil {
		return nil, err
	}

	auth, err := s.api.VerifyOTP(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if err := s.credentials.Save(ctx, auth.Token, auth.User); err != nil {
		return nil, err
	}

	s.logger.Info("signed in",
		zap.String("user_id", auth.User.ID),
		zap.Bool("created", auth.Created))

	report, err := reconcile.NewService(s.guest, s.api,
		reconcile.WithPolicy(s.policy),
		reconcile.WithLogger(s.logger),
	).Reconcile(ctx)
	if err != nil {
		s.logger.Warn("guest data reconciliation incomplete", zap.Error(err))
	}

	return &LoginResult{User: auth.User, Created: auth.Created, Report: report}, nil
}

// Logout forgets the session token. Guest data is left as is.
func (s *Session) Logout(ctx context.Context) error {
	return s.credentials.Clear(ctx)
}

// Checkout starts a checkout over the signed-in account.
func (s *Session) Checkout(opts ...checkout.Option) *checkout.Orchestrator {
	return checkout.New(s.api, append([]checkout.Option{checkout.WithLogger(s.logger)}, opts...)...)
}

// BuyNow puts the product in the signed-in user's server cart and returns a
// loaded checkout. Guests get ErrAuthRequired; nothing is added locally.
func (s *Session) BuyNow(ctx context.Context, productID string, quantity int, opts ...checkout.Option) (*checkout.Orchestrator, error) {
	const op = "storefront.BuyNow"
	if quantity < 1 {
		return nil, errs.Validation(op, "quantity must be at least 1")
	}
	if !s.SignedIn(ctx) {
		return nil, &errs.Error{Op: op, Message: "please log in to use Buy Now", Err: errs.ErrAuthRequired}
	}

	if err := s.api.AddToCart(ctx, productID, quantity); err != nil {
		return nil, err
	}

	co := s.Checkout(opts...)
	if err := co.Load(ctx); err != nil {
		return nil, err
	}
	return co, nil
}
