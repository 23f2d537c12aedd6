package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/errs"
	"gorm.io/gorm"
)

type AddressType string

const (
	AddressTypeHome   AddressType = "home"
	AddressTypeOffice AddressType = "office"
)

// AddressFields is the part of an address that is copied into an order.
type AddressFields struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Locality string `json:"locality"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark,omitempty"`
}

// Address is owned by an account and never updated after creation.
type Address struct {
	ID            string `gorm:"primaryKey" json:"id"`
	UserID        string `gorm:"index;not null" json:"-"`
	AddressFields `gorm:"embedded"`
	AddressType   AddressType `gorm:"type:VARCHAR(10)" json:"addressType"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type AddressInput struct {
	AddressFields
	AddressType AddressType `json:"addressType"`
}

// Validate checks the form before it is sent anywhere. An empty address type
// defaults to home.
func (in *AddressInput) Validate() error {
	const op = "address.Validate"

	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.Address = strings.TrimSpace(in.Address)
	in.Locality = strings.TrimSpace(in.Locality)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Landmark = strings.TrimSpace(in.Landmark)

	switch {
	case in.FullName == "":
		return errs.Validation(op, "full name is required")
	case len(in.Phone) != 10 || !isDigits(in.Phone):
		return errs.Validation(op, "phone must be a 10-digit number")
	case in.Address == "":
		return errs.Validation(op, "address is required")
	case in.Locality == "":
		return errs.Validation(op, "locality is required")
	case in.City == "":
		return errs.Validation(op, "city is required")
	case in.State == "":
		return errs.Validation(op, "state is required")
	case len(in.Pincode) != 6 || !isDigits(in.Pincode):
		return errs.Validation(op, "pincode must be a 6-digit number")
	}

	switch in.AddressType {
	case "":
		in.AddressType = AddressTypeHome
	case AddressTypeHome, AddressTypeOffice:
	default:
		return errs.Validation(op, "address type must be home or office")
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
