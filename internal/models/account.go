package models

import (
	"strings"
	"time"
)

// Role is the kind of account a session belongs to.
type Role string

const (
	RoleUser   Role = "USER"
	RoleVendor Role = "VENDOR"
)

// ParseRole accepts any casing of a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RoleVendor:
		return r, true
	}
	return "", false
}

// User is a shopper.
type User struct {
	Base
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Addresses []Address `json:"addresses,omitempty"`
}

// Vendor owns shops and the products listed in them.
type Vendor struct {
	Base
	Name      string `json:"name" gorm:"type:varchar(100)"`
	Email     string `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string `json:"-" gorm:"type:varchar(255)"`
	Phone     string `json:"phone,omitempty" gorm:"type:varchar(32)"`
	StoreName string `json:"storeName" gorm:"type:varchar(150)"`
	Shops     []Shop `json:"shops,omitempty"`
}

// Account is the role-independent view of a User or Vendor used by authentication
// and profile endpoints.
type Account struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	StoreName    string    `json:"storeName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Address is a saved shipping destination of a User.
type Address struct {
	Base
	UserID     string `json:"userId" gorm:"index;type:varchar(36)"`
	Label      string `json:"label" gorm:"type:varchar(50)"`
	Recipient  string `json:"recipient" gorm:"type:varchar(100)"`
	Line1      string `json:"line1" gorm:"type:varchar(255)"`
	Line2      string `json:"line2,omitempty" gorm:"type:varchar(255)"`
	City       string `json:"city" gorm:"type:varchar(100)"`
	State      string `json:"state,omitempty" gorm:"type:varchar(100)"`
	PostalCode string `json:"postalCode" gorm:"type:varchar(20)"`
	Country    string `json:"country" gorm:"type:varchar(100)"`
	Phone      string `json:"phone,omitempty" gorm:"type:varchar(32)"`
	IsDefault  bool   `json:"isDefault"`
}

// Format renders the address as the single line stored on orders.
func (a Address) Format() string {
	parts := []string{a.Recipient, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.Phone}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
