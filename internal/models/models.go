package models

import (
	"strings"
)

// DefaultAdminPassword is the admin credential used when none has ever been configured.
const DefaultAdminPassword = "admin123"

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// HeaderStyle represents how the public site header is drawn
type HeaderStyle string

const (
	HeaderSolid    HeaderStyle = "solid"
	HeaderGradient HeaderStyle = "gradient"
	HeaderGlass    HeaderStyle = "glass"
)

// MenuItem is a product shown on the public menu
type MenuItem struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"min=0"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image"`
	Available   bool    `json:"available"`
	Featured    bool    `json:"featured,omitempty"`
}

// MenuItemPatch is a partial update to a MenuItem. Nil fields are left unchanged.
type MenuItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Available   *bool    `json:"available,omitempty"`
	Featured    *bool    `json:"featured,omitempty"`
}

// Apply returns item with every non-nil patch field copied over it.
func (p MenuItemPatch) Apply(item MenuItem) MenuItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if p.Featured != nil {
		item.Featured = *p.Featured
	}
	return item
}

// IsEmpty reports whether the patch changes nothing
func (p MenuItemPatch) IsEmpty() bool {
	return p == MenuItemPatch{}
}

// Category groups menu items on the public menu
type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Icon string `json:"icon" validate:"required"`
}

// Reservation is a table booking made by a visitor
type Reservation struct {
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name" validate:"required"`
	Email     string            `json:"email" validate:"omitempty,email"`
	Phone     string            `json:"phone" validate:"required"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string            `json:"time" validate:"required,datetime=15:04"`
	Guests    int               `json:"guests" validate:"min=1"`
	Notes     string            `json:"notes"`
	Status    ReservationStatus `json:"status"`
	CreatedAt string            `json:"createdAt"`
}

// ReservationRequest is what a visitor submits; status and creation time are assigned on create.
type ReservationRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Guests int    `json:"guests"`
	Notes  string `json:"notes"`
}

// ReservationPatch is a partial update to a Reservation. CreatedAt is immutable.
type ReservationPatch struct {
	Name   *string            `json:"name,omitempty"`
	Email  *string            `json:"email,omitempty"`
	Phone  *string            `json:"phone,omitempty"`
	Date   *string            `json:"date,omitempty"`
	Time   *string            `json:"time,omitempty"`
	Guests *int               `json:"guests,omitempty"`
	Notes  *string            `json:"notes,omitempty"`
	Status *ReservationStatus `json:"status,omitempty"`
}

// Apply returns r with every non-nil patch field copied over it.
func (p ReservationPatch) Apply(r Reservation) Reservation {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Guests != nil {
		r.Guests = *p.Guests
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	return r
}

// Schedule holds free-text opening hours
type Schedule struct {
	Weekdays string `json:"weekdays"`
	Weekends string `json:"weekends"`
}

// SocialMedia holds optional profile links
type SocialMedia struct {
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	WhatsApp  string `json:"whatsapp"`
}

// HeaderConfig controls the public header look
type HeaderConfig struct {
	BgColor   string      `json:"bgColor"`
	TextColor string      `json:"textColor"`
	Style     HeaderStyle `json:"style"`
}

// BusinessConfig is the singleton business profile
type BusinessConfig struct {
	Name          string       `json:"name"`
	Slogan        string       `json:"slogan"`
	AdminPassword string       `json:"adminPassword,omitempty"`
	Description   string       `json:"description"`
	AboutUs       string       `json:"aboutUs"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	Schedule      Schedule     `json:"schedule"`
	SocialMedia   SocialMedia  `json:"socialMedia"`
	HeroImage     string       `json:"heroImage"`
	LogoURL       string       `json:"logoUrl"`
	AboutUsImage  string       `json:"aboutUsImage"`
	Header        HeaderConfig `json:"header"`
}

// Credential returns the configured admin credential, or the default when unset.
func (c BusinessConfig) Credential() string {
	if c.AdminPassword == "" {
		return DefaultAdminPassword
	}
	return c.AdminPassword
}

// IsValidStatus checks if a reservation status is valid
func IsValidStatus(s ReservationStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// NormalizeStatus lowercases and maps common aliases ("canceled") to a status
func NormalizeStatus(s string) ReservationStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "canceled" {
		s = string(StatusCancelled)
	}
	return ReservationStatus(s)
}

// CanTransition reports whether a reservation may move from s to next.
// Setting the current status again is a no-op and allowed.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// IsValidHeaderStyle checks if a header style is valid
func IsValidHeaderStyle(s HeaderStyle) bool {
	switch s {
	case HeaderSolid, HeaderGradient, HeaderGlass:
		return true
	}
	return false
}

// CountByCategory returns how many items reference each category id
func CountByCategory(items []MenuItem) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		counts[it.Category]++
	}
	return counts
}
