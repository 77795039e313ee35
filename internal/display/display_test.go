package display

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/platform/platformtest"
)

func widget(stock int64) model.Product {
	return model.Product{
		Name:        "Widget",
		Description: "A small widget",
		Price:       decimal.RequireFromString("9.99"),
		Stock:       stock,
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"#00FF00", 0x00FF00, false},
		{"00ff00", 0x00FF00, false},
		{"0x123ABC", 0x123ABC, false},
		{"Green", ColorInStock, false},
		{" red ", ColorOutOfStock, false},
		{"#FFF", 0, true},
		{"#GGGGGG", 0, true},
		{"chartreuse", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorDerivedFromStock(t *testing.T) {
	for _, stock := range []int64{0, 1, 2, 50, 1 << 40} {
		p := widget(stock)
		want := ColorOutOfStock
		if stock > 0 {
			want = ColorInStock
		}
		assert.Equal(t, want, Color(p), "stock=%d", stock)
	}
}

func TestColorOverrideWins(t *testing.T) {
	for _, stock := range []int64{0, 1, 99} {
		p := widget(stock)
		p.DisplayColor = "#123456"
		assert.Equal(t, 0x123456, Color(p), "stock=%d", stock)
	}
}

func TestColorIgnoresUnparsableOverride(t *testing.T) {
	p := widget(0)
	p.DisplayColor = "not-a-color"

	assert.Equal(t, ColorOutOfStock, Color(p))
}

func TestRender(t *testing.T) {
	r := Renderer{Currency: "EUR"}
	p := widget(3)
	p.ImageURL = "https://cdn.example.com/w.png"

	card := r.Render(p)

	assert.Equal(t, "Widget", card.Title)
	assert.Equal(t, "A small widget", card.Description)
	assert.Equal(t, []model.CardField{
		{Name: LabelPrice, Value: "9.99 EUR"},
		{Name: LabelStatus, Value: StatusInStock},
	}, card.Fields)
	assert.Equal(t, ColorInStock, card.Color)
	assert.Equal(t, "https://cdn.example.com/w.png", card.ImageURL)

	out := r.Render(widget(0))
	assert.Equal(t, StatusOutOfStock, out.Fields[1].Value)
	assert.Equal(t, ColorOutOfStock, out.Color)
	assert.Empty(t, out.ImageURL)
}

func TestRenderDetail(t *testing.T) {
	card := Renderer{Currency: "EUR"}.RenderDetail(widget(7))

	assert.Equal(t, []model.CardField{
		{Name: LabelPrice, Value: "9.99 EUR"},
		{Name: LabelStock, Value: "7 pcs."},
	}, card.Fields)
}

func TestSynchronizerPublishAndUpdate(t *testing.T) {
	ctx := context.Background()
	g := platformtest.New()
	s := NewSynchronizer(g)
	r := Renderer{Currency: "EUR"}
	ch, err := g.CreateChannel(ctx, "widget", nil)
	require.NoError(t, err)

	msg, err := s.Publish(ctx, ch, r.Render(widget(3)))
	require.NoError(t, err)

	out := s.Update(ctx, ch.ID(), msg.ID(), r.Render(widget(0)))
	assert.True(t, out.OK)
	card, ok := g.Card(ch.ID(), msg.ID())
	require.True(t, ok)
	assert.Equal(t, StatusOutOfStock, card.Fields[1].Value)
}

func TestSynchronizerPublishFailure(t *testing.T) {
	ctx := context.Background()
	g := platformtest.New()
	ch, err := g.CreateChannel(ctx, "widget", nil)
	require.NoError(t, err)
	g.SendErr = errors.New("embed too large")

	_, err = NewSynchronizer(g).Publish(ctx, ch, model.StatusCard{})

	assert.ErrorContains(t, err, "embed too large")
}

func TestSynchronizerUpdateDeletedMessage(t *testing.T) {
	ctx := context.Background()
	g := platformtest.New()
	s := NewSynchronizer(g)
	ch, err := g.CreateChannel(ctx, "widget", nil)
	require.NoError(t, err)
	msg, err := s.Publish(ctx, ch, model.StatusCard{Title: "Widget"})
	require.NoError(t, err)
	g.RemoveMessage(ch.ID(), msg.ID())

	out := s.Update(ctx, ch.ID(), msg.ID(), model.StatusCard{Title: "Widget"})

	assert.False(t, out.OK)
	assert.Equal(t, "status message no longer exists", out.Detail)
}
