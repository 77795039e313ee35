// Package channel creates and removes the channel bound to each product.
package channel

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/platform"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a channel name from a product name: lowercase, with every run
// of characters outside [a-z0-9] replaced by a single '-'.
func Slug(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
}

// Provisioner owns channel creation and deletion on a Guild.
type Provisioner struct {
	guild platform.Guild
}

// NewProvisioner returns a Provisioner for guild.
func NewProvisioner(guild platform.Guild) *Provisioner {
	return &Provisioner{guild: guild}
}

// Overwrites returns the access policy for a product channel: the default
// audience may not post, the allowed roles may.
func Overwrites(allowed []model.Role) []platform.Overwrite {
	out := []platform.Overwrite{{Everyone: true, Deny: platform.PermSendMessages}}
	for _, r := range allowed {
		out = append(out, platform.Overwrite{RoleID: r.ID, Allow: platform.PermSendMessages})
	}
	return out
}

// Provision creates the channel named slug.
func (p *Provisioner) Provision(ctx context.Context, slug string, allowed []model.Role) (platform.ChannelHandle, error) {
	ch, err := p.guild.CreateChannel(ctx, slug, Overwrites(allowed))
	if err != nil {
		return nil, errors.Wrapf(err, "create channel %q", slug)
	}
	obs.Info(ctx, "channel_provisioned", zap.String("channel", slug), zap.String("channel_id", ch.ID()))
	return ch, nil
}

// Deprovision deletes the channel with id. A channel that no longer exists
// counts as deleted; any other failure is reported in the Outcome.
func (p *Provisioner) Deprovision(ctx context.Context, channelID string) model.Outcome {
	if channelID == "" {
		return model.Succeeded("no channel bound")
	}
	err := p.guild.Channel(channelID).Delete(ctx)
	switch {
	case err == nil:
		obs.Info(ctx, "channel_deprovisioned", zap.String("channel_id", channelID))
		return model.Succeeded("channel deleted")
	case errors.Is(err, platform.ErrUnknownResource):
		obs.Info(ctx, "channel_already_gone", zap.String("channel_id", channelID))
		return model.Succeeded("channel already deleted")
	default:
		obs.Warn(ctx, "channel_deprovision_failed", zap.String("channel_id", channelID), zap.Error(err))
		return model.Failed(err.Error())
	}
}
