// Package model defines domain types used by the bot.
package model

import "github.com/shopspring/decimal"

// Product is a catalog entry bound to one channel and one status message.
type Product struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	ChannelID   string
	MessageID   string
	ImageURL    string
	// DisplayColor is the color override as entered; empty means derived from stock.
	DisplayColor string
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock > 0 }

// Role is a platform role resolved for a requester.
type Role struct {
	ID   string
	Name string
}

// CardField is one name/value line of a status card.
type CardField struct {
	Name  string
	Value string
}

// StatusCard is the rendered representation of a product.
type StatusCard struct {
	Title       string
	Description string
	Fields      []CardField
	Color       int
	ImageURL    string
}

// Outcome reports the result of a best-effort operation.
type Outcome struct {
	OK     bool
	Detail string
}

// Succeeded returns a successful Outcome.
func Succeeded(detail string) Outcome { return Outcome{OK: true, Detail: detail} }

// Failed returns a failed Outcome.
func Failed(detail string) Outcome { return Outcome{OK: false, Detail: detail} }
