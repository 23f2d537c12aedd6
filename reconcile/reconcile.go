// Package reconcile migrates a guest's device-local cart and wishlist into the
// account that just signed in.
//
// Migration is sequential and best-effort: cart lines go first, then wishlist
// entries, each in insertion order. A failed item is logged and reported, never
// retried, and does not stop the batch.
package reconcile

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/storefront/models"
	"go.uber.org/zap"
)

// GuestState is the local side being drained.
type GuestState interface {
	Cart(ctx context.Context) (models.GuestCart, error)
	SetCart(ctx context.Context, cart models.GuestCart) error
	ClearCart(ctx context.Context) error
	Wishlist(ctx context.Context) (models.GuestWishlist, error)
	SetWishlist(ctx context.Context, wishlist models.GuestWishlist) error
	ClearWishlist(ctx context.Context) error
}

// ServerSession is the authenticated destination.
type ServerSession interface {
	AddToCart(ctx context.Context, productID string, quantity int) error
	AddToWishlist(ctx context.Context, productID string) error
}

type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

type Outcome string

const (
	Migrated Outcome = "migrated"
	Failed   Outcome = "failed"
)

type ItemResult struct {
	Kind      Kind
	ProductID string
	Quantity  int
	Outcome   Outcome
	Err       error
}

type Report struct {
	Cart     []ItemResult
	Wishlist []ItemResult
	// Cleared is true when local state was modified after migration.
	Cleared bool
}

// Failed lists every item that did not migrate, cart items first.
func (r *Report) Failed() []ItemResult {
	var out []ItemResult
	for _, res := range append(append([]ItemResult{}, r.Cart...), r.Wishlist...) {
		if res.Outcome == Failed {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) Migrated() int {
	n := 0
	for _, res := range append(append([]ItemResult{}, r.Cart...), r.Wishlist...) {
		if res.Outcome == Migrated {
			n++
		}
	}
	return n
}

// ClearPolicy decides what happens to local state once the loop finishes.
type ClearPolicy int

const (
	// ClearAll drops the whole guest cart and wishlist even if some items
	// failed. Failed items are lost.
	ClearAll ClearPolicy = iota
	// ClearMigrated keeps only the failed items so a later login retries them.
	ClearMigrated
	// ClearNone leaves local state untouched.
	ClearNone
)

func (p ClearPolicy) String() string {
	switch p {
	case ClearAll:
		return "clear_all"
	case ClearMigrated:
		return "clear_migrated"
	case ClearNone:
		return "clear_none"
	}
	return "unknown"
}

type Service struct {
	guest  GuestState
	server ServerSession
	policy ClearPolicy
	logger *zap.Logger
}

type Option func(*Service)

func WithPolicy(p ClearPolicy) Option {
	return func(s *Service) { s.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(guest GuestState, server ServerSession, opts ...Option) *Service {
	s := &Service{
		guest:  guest,
		server: server,
		policy: ClearAll,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile drains the guest snapshot into the server session and applies the
// clear policy. The error is non-nil only when local state could not be read
// or written; per-item failures are in the report.
func (s *Service) Reconcile(ctx context.Context) (*Report, error) {
	cart, err := s.guest.Cart(ctx)
	if err != nil {
		return nil, err
	}
	wishlist, err := s.guest.Wishlist(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	for _, item := range cart.Items {
		res := ItemResult{Kind: KindCart, ProductID: item.ProductID, Quantity: item.Quantity, Outcome: Migrated}
		if err := ctx.Err(); err != nil {
			res.Outcome, res.Err = Failed, err
		} else if err := s.server.AddToCart(ctx, item.ProductID, item.Quantity); err != nil {
			res.Outcome, res.Err = Failed, err
			s.logger.Warn("failed to migrate cart item",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
		report.Cart = append(report.Cart, res)
	}

	for _, productID := range wishlist.Products {
		res := ItemResult{Kind: KindWishlist, ProductID: productID, Outcome: Migrated}
		if err := ctx.Err(); err != nil {
			res.Outcome, res.Err = Failed, err
		} else if err := s.server.AddToWishlist(ctx, productID); err != nil {
			res.Outcome, res.Err = Failed, err
			s.logger.Warn("failed to migrate wishlist item",
				zap.String("product_id", productID),
				zap.Error(err))
		}
		report.Wishlist = append(report.Wishlist, res)
	}

	// Local writes must not be skipped because the caller's context ended.
	cleared, err := s.apply(context.WithoutCancel(ctx), report)
	report.Cleared = cleared

	s.logger.Info("guest data reconciled",
		zap.Int("migrated", report.Migrated()),
		zap.Int("failed", len(report.Failed())),
		zap.Stringer("policy", s.policy))

	return report, err
}

func (s *Service) apply(ctx context.Context, report *Report) (bool, error) {
	switch s.policy {
	case ClearNone:
		return false, nil

	case ClearMigrated:
		var cart models.GuestCart
		for _, res := range report.Cart {
			if res.Outcome == Failed {
				cart.Items = append(cart.Items, models.GuestCartItem{ProductID: res.ProductID, Quantity: res.Quantity})
			}
		}
		var wishlist models.GuestWishlist
		for _, res := range report.Wishlist {
			if res.Outcome == Failed {
				wishlist.Products = append(wishlist.Products, res.ProductID)
			}
		}

		var errCart, errWishlist error
		if len(cart.Items) == 0 {
			errCart = s.guest.ClearCart(ctx)
		} else {
			errCart = s.guest.SetCart(ctx, cart)
		}
		if len(wishlist.Products) == 0 {
			errWishlist = s.guest.ClearWishlist(ctx)
		} else {
			errWishlist = s.guest.SetWishlist(ctx, wishlist)
		}
		return true, errors.Join(errCart, errWishlist)

	default:
		return true, errors.Join(s.guest.ClearCart(ctx), s.guest.ClearWishlist(ctx))
	}
}
