// Package otp issues and verifies one-time phone verification codes.
//
// Codes are always CodeLength digits. Phone numbers are national 10-digit
// numbers; the country code is only added when a message is sent.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/kv"
	"go.uber.org/zap"
)

const (
	CodeLength  = 6
	PhoneLength = 10

	DefaultTTL         = 5 * time.Minute
	DefaultMaxAttempts = 5
)

var (
	ErrInvalidPhone = fmt.Errorf("%w: phone must be a %d-digit number", errs.ErrValidation, PhoneLength)
	ErrInvalidCode  = fmt.Errorf("%w: invalid or expired code", errs.ErrValidation)
)

func ValidatePhone(phone string) error {
	if len(phone) != PhoneLength || !digits(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateCode checks the shape of a code only.
func ValidateCode(code string) error {
	if len(code) != CodeLength || !digits(code) {
		return fmt.Errorf("%w: code must be %d digits", errs.ErrValidation, CodeLength)
	}
	return nil
}

// GenerateCode returns a uniformly random code without a leading zero.
func GenerateCode() (string, error) {
	lo := int64(1)
	for i := 1; i < CodeLength; i++ {
		lo *= 10
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9*lo))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(lo+n.Int64(), 10), nil
}

// Sender delivers a code to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// Service keeps pending codes in a kv.Store keyed by phone.
type Service struct {
	store       kv.Store
	sender      Sender
	ttl         time.Duration
	maxAttempts int
	generate    func() (string, error)
	logger      *zap.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.generate = fn }
}

func NewService(store kv.Store, sender Sender, opts ...Option) *Service {
	s := &Service{
		store:       store,
		sender:      sender,
		ttl:         DefaultTTL,
		maxAttempts: DefaultMaxAttempts,
		generate:    GenerateCode,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send issues a fresh code for phone, replacing any pending one.
func (s *Service) Send(ctx context.Context, phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, codeKey(phone), []byte(code), s.ttl); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err := s.store.Delete(ctx, attemptsKey(phone)); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}

	if err := s.sender.Send(ctx, phone, code); err != nil {
		_ = s.store.Delete(ctx, codeKey(phone))
		return fmt.Errorf("send code: %w", err)
	}

	s.logger.Info("otp sent", zap.String("phone", mask(phone)))
	return nil
}

// Verify consumes the pending code for phone when it matches. Every guess is
// counted before the comparison; once maxAttempts guesses have been made the
// pending code is discarded, however many requests race.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if err := ValidateCode(code); err != nil {
		return err
	}

	attempts, err := s.store.Incr(ctx, attemptsKey(phone), s.ttl)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if attempts > int64(s.maxAttempts) {
		s.burn(ctx, phone)
		return ErrInvalidCode
	}

	want, err := s.store.Get(ctx, codeKey(phone))
	if errors.Is(err, kv.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}

	if subtle.ConstantTimeCompare(want, []byte(code)) == 1 {
		if err := s.store.Delete(ctx, codeKey(phone)); err != nil {
			return fmt.Errorf("consume code: %w", err)
		}
		_ = s.store.Delete(ctx, attemptsKey(phone))
		return nil
	}

	if attempts == int64(s.maxAttempts) {
		s.logger.Warn("otp burned after repeated failures", zap.String("phone", mask(phone)))
		s.burn(ctx, phone)
	}
	return ErrInvalidCode
}

// burn drops the pending code. The attempt counter is left to expire so that
// late guesses keep failing until a new code is sent.
func (s *Service) burn(ctx context.Context, phone string) {
	_ = s.store.Delete(ctx, codeKey(phone))
}

func codeKey(phone string) string     { return "otp:" + phone }
func attemptsKey(phone string) string { return "otp_attempts:" + phone }

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func mask(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return "******" + phone[len(phone)-4:]
}
