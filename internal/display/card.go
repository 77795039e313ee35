// Package display renders product status cards and keeps the published card
// of each product in sync with its record.
package display

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
)

// Derived card colors.
const (
	ColorInStock    = 0x57F287
	ColorOutOfStock = 0xED4245
)

// Field labels and status values shown on cards.
const (
	LabelPrice  = "💰 Price"
	LabelStatus = "📦 Status"
	LabelStock  = "📦 Stock"

	StatusInStock    = "✅ In stock"
	StatusOutOfStock = "❌ Out of stock"
)

var namedColors = map[string]int{
	"default":   0x000000,
	"white":     0xFFFFFF,
	"aqua":      0x1ABC9C,
	"green":     ColorInStock,
	"blue":      0x3498DB,
	"yellow":    0xFEE75C,
	"purple":    0x9B59B6,
	"fuchsia":   0xEB459E,
	"gold":      0xF1C40F,
	"orange":    0xE67E22,
	"red":       ColorOutOfStock,
	"grey":      0x95A5A6,
	"navy":      0x34495E,
	"blurple":   0x5865F2,
	"greyple":   0x99AAB5,
	"darkgreen": 0x1F8B4C,
	"darkred":   0x992D22,
}

// ErrInvalidColor is returned by ParseColor for unrecognized input.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor accepts "#RRGGBB", "RRGGBB", "0xRRGGBB" or a color name such as "Green".
func ParseColor(s string) (int, error) {
	v := strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(v)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(v), "#"), "0x")
	if len(hex) != 6 {
		return 0, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	return int(n), nil
}

// Color returns the explicit override of p when it parses, otherwise a color
// derived from the current stock.
func Color(p model.Product) int {
	if p.DisplayColor != "" {
		if c, err := ParseColor(p.DisplayColor); err == nil {
			return c
		}
	}
	if p.InStock() {
		return ColorInStock
	}
	return ColorOutOfStock
}

// Renderer builds status cards.
type Renderer struct {
	Currency string
}

func (r Renderer) price(p model.Product) string {
	if r.Currency == "" {
		return p.Price.String()
	}
	return p.Price.String() + " " + r.Currency
}

// Render builds the public card published in the product channel.
func (r Renderer) Render(p model.Product) model.StatusCard {
	status := StatusOutOfStock
	if p.InStock() {
		status = StatusInStock
	}
	return model.StatusCard{
		Title:       p.Name,
		Description: p.Description,
		Fields: []model.CardField{
			{Name: LabelPrice, Value: r.price(p)},
			{Name: LabelStatus, Value: status},
		},
		Color:    Color(p),
		ImageURL: p.ImageURL,
	}
}

// RenderDetail builds the private card shown to a requester, with the exact
// stock count instead of the in/out status.
func (r Renderer) RenderDetail(p model.Product) model.StatusCard {
	return model.StatusCard{
		Title:       p.Name,
		Description: p.Description,
		Fields: []model.CardField{
			{Name: LabelPrice, Value: r.price(p)},
			{Name: LabelStock, Value: strconv.FormatInt(p.Stock, 10) + " pcs."},
		},
		Color:    Color(p),
		ImageURL: p.ImageURL,
	}
}
