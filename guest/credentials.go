package guest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/junaidrashid-git/storefront/kv"
	"github.com/junaidrashid-git/storefront/models"
)

// Credentials holds the session token and the cached profile of the signed-in
// user next to the guest state.
type Credentials struct {
	kv kv.Store
}

func NewCredentials(store kv.Store) *Credentials {
	return &Credentials{kv: store}
}

// Token returns the stored session token. Storage failures read as signed out.
func (c *Credentials) Token(ctx context.Context) (string, bool) {
	raw, err := c.kv.Get(ctx, TokenKey)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// User returns the cached profile; a corrupt value reads as absent.
func (c *Credentials) User(ctx context.Context) (*models.User, bool) {
	raw, err := c.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *Credentials) Save(ctx context.Context, token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, TokenKey, []byte(token), 0); err != nil {
		return err
	}
	return c.kv.Set(ctx, UserKey, raw, 0)
}

func (c *Credentials) Clear(ctx context.Context) error {
	return errors.Join(
		c.kv.Delete(ctx, TokenKey),
		c.kv.Delete(ctx, UserKey),
	)
}
