package display

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/platform"
)

// Synchronizer pushes rendered cards to the platform.
type Synchronizer struct {
	guild platform.Guild
}

// NewSynchronizer returns a Synchronizer for guild.
func NewSynchronizer(guild platform.Guild) *Synchronizer {
	return &Synchronizer{guild: guild}
}

// Publish posts card as a new message in ch. Used once, when a product is created.
func (s *Synchronizer) Publish(ctx context.Context, ch platform.ChannelHandle, card model.StatusCard) (platform.MessageHandle, error) {
	msg, err := ch.Send(ctx, card)
	if err != nil {
		return nil, errors.Wrapf(err, "publish card in channel %s", ch.ID())
	}
	obs.Info(ctx, "card_published", zap.String("channel_id", ch.ID()), zap.String("message_id", msg.ID()))
	return msg, nil
}

// Update edits the bound message in place. Failures are reported in the
// Outcome and logged; the card stays stale until the next successful update.
func (s *Synchronizer) Update(ctx context.Context, channelID, messageID string, card model.StatusCard) model.Outcome {
	err := s.guild.Message(channelID, messageID).Edit(ctx, card)
	if err == nil {
		return model.Succeeded("card updated")
	}
	detail := err.Error()
	if errors.Is(err, platform.ErrUnknownResource) {
		detail = "status message no longer exists"
	}
	obs.Warn(ctx, "card_update_failed",
		zap.String("channel_id", channelID),
		zap.String("message_id", messageID),
		zap.Error(err),
	)
	return model.Failed(detail)
}
