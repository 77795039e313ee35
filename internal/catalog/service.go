// Package catalog implements the product use cases: it composes the store,
// the channel provisioner and the display synchronizer in a fixed order so
// that the record, the channel and the status card stay consistent.
package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/channel"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/display"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/store"
)

// Direction selects how AdjustStock changes the stock.
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

// NewProduct is the input of AddProduct.
type NewProduct struct {
	Name        string          `validate:"required,max=100"`
	Description string          `validate:"max=4096"`
	Price       decimal.Decimal `validate:"-"`
	Stock       int64           `validate:"gte=0"`
	Color       string          `validate:"max=32"`
	ImageURL    string          `validate:"omitempty,url"`
}

// StockLine is one row of the stock listing.
type StockLine struct {
	Name  string
	Stock int64
}

// Service runs the catalog use cases.
type Service struct {
	store    *store.Store
	channels *channel.Provisioner
	sync     *display.Synchronizer
	renderer display.Renderer
	validate *validator.Validate
}

// NewService wires a Service.
func NewService(st *store.Store, channels *channel.Provisioner, sync *display.Synchronizer, renderer display.Renderer) *Service {
	return &Service{
		store:    st,
		channels: channels,
		sync:     sync,
		renderer: renderer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) validateNew(in *NewProduct) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New(describeField(verrs[0]))
		}
		return err
	}
	if in.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	if in.Color != "" {
		if _, err := display.ParseColor(in.Color); err != nil {
			return errors.Errorf("color %q is not a hex color like #00FF00 or a color name", in.Color)
		}
	}
	return nil
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if field == "imageurl" {
		field = "image"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return field + " must not be negative"
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

// AddProduct creates the channel, publishes the initial card and stores the
// record, in that order. When the card cannot be published or the record
// cannot be stored, the new channel is removed again so no channel is left
// without a record.
func (s *Service) AddProduct(ctx context.Context, in NewProduct, allowed []model.Role) (model.Product, error) {
	const op = "add product"
	if err := s.validateNew(&in); err != nil {
		return model.Product{}, fail(op, ErrInvalidInput, err)
	}
	if _, ok := s.store.Find(in.Name); ok {
		return model.Product{}, fail(op, ErrDuplicateName, nil)
	}
	slug := channel.Slug(in.Name)
	for _, existing := range s.store.List() {
		if channel.Slug(existing.Name) == slug {
			return model.Product{}, fail(op, ErrDuplicateSlug, errors.Errorf("%q is used by %q", slug, existing.Name))
		}
	}

	p := model.Product{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Stock:        in.Stock,
		ImageURL:     in.ImageURL,
		DisplayColor: in.Color,
	}
	card := s.renderer.Render(p)

	ch, err := s.channels.Provision(ctx, slug, allowed)
	if err != nil {
		obs.Error(ctx, "channel_provision_failed", zap.String("product", p.Name), zap.Error(err))
		return model.Product{}, fail(op, ErrExternal, err)
	}
	p.ChannelID = ch.ID()

	msg, err := s.sync.Publish(ctx, ch, card)
	if err != nil {
		obs.Error(ctx, "card_publish_failed", zap.String("product", p.Name), zap.Error(err))
		s.cleanupChannel(ctx, p)
		return model.Product{}, fail(op, ErrExternal, err)
	}
	p.MessageID = msg.ID()

	if err := s.store.Insert(ctx, p); err != nil {
		obs.Error(ctx, "product_insert_failed", zap.String("product", p.Name), zap.Error(err))
		s.cleanupChannel(ctx, p)
		if errors.Is(err, store.ErrDuplicateName) {
			return model.Product{}, fail(op, ErrDuplicateName, err)
		}
		return model.Product{}, fail(op, ErrPersistence, err)
	}

	obs.Info(ctx, "product_added",
		zap.String("product", p.Name),
		zap.String("channel_id", p.ChannelID),
		zap.String("message_id", p.MessageID),
	)
	return p, nil
}

func (s *Service) cleanupChannel(ctx context.Context, p model.Product) {
	out := s.channels.Deprovision(ctx, p.ChannelID)
	if !out.OK {
		obs.Error(ctx, "channel_leaked",
			zap.String("product", p.Name),
			zap.String("channel_id", p.ChannelID),
			zap.String("detail", out.Detail),
		)
	}
}

// RemoveProduct deletes the product channel (best effort) and then the record.
// The returned Outcome reports the channel deletion.
func (s *Service) RemoveProduct(ctx context.Context, name string) (model.Product, model.Outcome, error) {
	const op = "remove product"
	p, ok := s.store.Find(name)
	if !ok {
		return model.Product{}, model.Outcome{}, fail(op, ErrNotFound, nil)
	}

	out := s.channels.Deprovision(ctx, p.ChannelID)

	removed, err := s.store.Remove(ctx, p.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Product{}, out, fail(op, ErrNotFound, err)
		}
		obs.Error(ctx, "product_remove_failed", zap.String("product", p.Name), zap.Error(err))
		return model.Product{}, out, fail(op, ErrPersistence, err)
	}

	obs.Info(ctx, "product_removed", zap.String("product", removed.Name), zap.Bool("channel_deleted", out.OK))
	return removed, out, nil
}

// AdjustStock adds qty to or removes qty from the stock (never below zero),
// persists, then refreshes the public card. A failed refresh is reported in
// the Outcome and does not undo the stock change.
func (s *Service) AdjustStock(ctx context.Context, name string, dir Direction, qty int64) (model.Product, model.Outcome, error) {
	const op = "adjust stock"
	if qty <= 0 {
		return model.Product{}, model.Outcome{}, fail(op, ErrInvalidInput, errors.New("quantity must be a positive integer"))
	}
	if dir != DirectionAdd && dir != DirectionRemove {
		return model.Product{}, model.Outcome{}, fail(op, ErrInvalidInput, errors.Errorf("unknown direction %q", dir))
	}
	current, ok := s.store.Find(name)
	if !ok {
		return model.Product{}, model.Outcome{}, fail(op, ErrNotFound, nil)
	}
	if dir == DirectionAdd && current.Stock > math.MaxInt64-qty {
		return model.Product{}, model.Outcome{}, fail(op, ErrInvalidInput, errors.New("stock would overflow"))
	}

	updated, err := s.store.Update(ctx, current.Name, func(p *model.Product) {
		p.Stock = applyStock(p.Stock, dir, qty)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Product{}, model.Outcome{}, fail(op, ErrNotFound, err)
		}
		obs.Error(ctx, "stock_persist_failed", zap.String("product", current.Name), zap.Error(err))
		return model.Product{}, model.Outcome{}, fail(op, ErrPersistence, err)
	}

	out := s.sync.Update(ctx, updated.ChannelID, updated.MessageID, s.renderer.Render(updated))
	obs.Info(ctx, "stock_adjusted",
		zap.String("product", updated.Name),
		zap.String("direction", string(dir)),
		zap.Int64("quantity", qty),
		zap.Int64("stock", updated.Stock),
		zap.Bool("card_updated", out.OK),
	)
	return updated, out, nil
}

func applyStock(stock int64, dir Direction, qty int64) int64 {
	if dir == DirectionAdd {
		return stock + qty
	}
	if qty >= stock {
		return 0
	}
	return stock - qty
}

// Query returns the product and a private detail card. The public card is untouched.
func (s *Service) Query(_ context.Context, name string) (model.Product, model.StatusCard, error) {
	p, ok := s.store.Find(name)
	if !ok {
		return model.Product{}, model.StatusCard{}, fail("query", ErrNotFound, nil)
	}
	return p, s.renderer.RenderDetail(p), nil
}

// ListStock returns name and stock of every product in catalog order.
func (s *Service) ListStock(_ context.Context) []StockLine {
	products := s.store.List()
	lines := make([]StockLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, StockLine{Name: p.Name, Stock: p.Stock})
	}
	return lines
}

// EmptyCatalog is shown by FormatStockList when there are no products.
const EmptyCatalog = "No products"

// FormatStockList renders one line per product with its stock in pieces.
func FormatStockList(lines []StockLine) string {
	if len(lines) == 0 {
		return EmptyCatalog
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s — %d pcs.", l.Name, l.Stock)
	}
	return b.String()
}
