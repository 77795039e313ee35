// Package snapshot persists the whole catalog as a single document.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/config"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/display"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
)

// Adapter loads and saves the full product collection.
//
// Load never fails: a missing or unreadable snapshot yields an empty catalog.
// Save replaces the stored snapshot and reports any failure.
type Adapter interface {
	Load(ctx context.Context) []model.Product
	Save(ctx context.Context, products []model.Product) error
	Close() error
}

// Open returns the adapter selected by cfg.Backend.
func Open(cfg config.Store) (Adapter, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFile(cfg.ProductsFile), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedis(client, cfg.RedisKey), nil
	default:
		return nil, errors.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}

// record is the persisted shape of a product. Keys match the products.json
// written by earlier releases of the bot.
type record struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int64       `json:"stock"`
	ChannelID   string      `json:"channelId"`
	MessageID   string      `json:"messageId"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	EmbedColor  string      `json:"embedColor,omitempty"`
}

// Encode renders products as the snapshot JSON document.
func Encode(products []model.Product) ([]byte, error) {
	recs := make([]record, 0, len(products))
	for _, p := range products {
		recs = append(recs, record{
			Name:        p.Name,
			Description: p.Description,
			Price:       json.Number(p.Price.String()),
			Stock:       p.Stock,
			ChannelID:   p.ChannelID,
			MessageID:   p.MessageID,
			ImageURL:    p.ImageURL,
			EmbedColor:  encodeColor(p.DisplayColor),
		})
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// Decode parses a snapshot JSON document.
func Decode(data []byte) ([]model.Product, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	products := make([]model.Product, 0, len(recs))
	for i, r := range recs {
		price := decimal.Zero
		if r.Price != "" {
			var err error
			price, err = decimal.NewFromString(r.Price.String())
			if err != nil {
				return nil, errors.Wrapf(err, "decode price of record %d", i)
			}
		}
		products = append(products, model.Product{
			Name:         r.Name,
			Description:  r.Description,
			Price:        price,
			Stock:        r.Stock,
			ChannelID:    r.ChannelID,
			MessageID:    r.MessageID,
			ImageURL:     r.ImageURL,
			DisplayColor: decodeColor(r.EmbedColor),
		})
	}
	return products, nil
}

// Older documents always carry "Green" or "Red" in embedColor, derived from
// the stock at save time. Those values mean no override.
func isStockColorName(c string) bool {
	c = strings.TrimSpace(c)
	return strings.EqualFold(c, "green") || strings.EqualFold(c, "red")
}

// encodeColor writes an explicit green or red override as hex so it is not
// mistaken for a stock-derived value when the document is read back.
func encodeColor(c string) string {
	if !isStockColorName(c) {
		return c
	}
	v, err := display.ParseColor(c)
	if err != nil {
		return c
	}
	return fmt.Sprintf("#%06X", v)
}

func decodeColor(c string) string {
	if isStockColorName(c) {
		return ""
	}
	return c
}
