package discord

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/platform"
)

// Guild implements platform.Guild and platform.RoleSource for one server.
type Guild struct {
	s       *discordgo.Session
	guildID string
}

// NewGuild returns a Guild bound to guildID.
func NewGuild(s *discordgo.Session, guildID string) *Guild {
	return &Guild{s: s, guildID: guildID}
}

var (
	_ platform.Guild      = (*Guild)(nil)
	_ platform.RoleSource = (*Guild)(nil)
)

// CreateChannel creates a text channel with the given permission overwrites.
func (g *Guild) CreateChannel(ctx context.Context, name string, overwrites []platform.Overwrite) (platform.ChannelHandle, error) {
	ch, err := g.s.GuildChannelCreateComplex(g.guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: toPermissionOverwrites(g.guildID, overwrites),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return &channelHandle{s: g.s, id: ch.ID}, nil
}

func (g *Guild) Channel(id string) platform.ChannelHandle {
	return &channelHandle{s: g.s, id: id}
}

func (g *Guild) Message(channelID, messageID string) platform.MessageHandle {
	return &messageHandle{s: g.s, channelID: channelID, id: messageID}
}

// Roles returns the roles of the server, from the state cache when it is
// populated and from the REST API otherwise.
func (g *Guild) Roles() []model.Role {
	if g.s.State != nil {
		if guild, err := g.s.State.Guild(g.guildID); err == nil && len(guild.Roles) > 0 {
			return toRoles(guild.Roles)
		}
	}
	roles, err := g.s.GuildRoles(g.guildID)
	if err != nil {
		obs.Logger.Warn("guild roles unavailable", zap.String("guild_id", g.guildID), zap.Error(err))
		return nil
	}
	return toRoles(roles)
}

// RolesByID resolves member role ids to roles. Unknown ids are skipped.
func (g *Guild) RolesByID(ids []string) []model.Role {
	if len(ids) == 0 {
		return nil
	}
	var (
		out     []model.Role
		missing []string
	)
	for _, id := range ids {
		if g.s.State != nil {
			if r, err := g.s.State.Role(g.guildID, id); err == nil {
				out = append(out, model.Role{ID: r.ID, Name: r.Name})
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out
	}
	byID := make(map[string]model.Role)
	for _, r := range g.Roles() {
		byID[r.ID] = r
	}
	for _, id := range missing {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func toRoles(roles []*discordgo.Role) []model.Role {
	out := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, model.Role{ID: r.ID, Name: r.Name})
	}
	return out
}

// toPermissionOverwrites maps the access policy onto role overwrites. The
// @everyone role shares its id with the guild.
func toPermissionOverwrites(guildID string, overwrites []platform.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for _, o := range overwrites {
		id := o.RoleID
		if o.Everyone {
			id = guildID
		}
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    id,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: int64(o.Allow),
			Deny:  int64(o.Deny),
		})
	}
	return out
}

// toEmbed renders a status card as a Discord embed.
func toEmbed(card model.StatusCard) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       card.Title,
		Description: card.Description,
		Color:       card.Color,
	}
	for _, f := range card.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: true})
	}
	if card.ImageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: card.ImageURL}
	}
	return e
}

// mapError turns "unknown channel" and "unknown message" responses into
// platform.ErrUnknownResource.
func mapError(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Message != nil {
			switch rest.Message.Code {
			case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownMessage:
				return errors.Wrap(platform.ErrUnknownResource, rest.Message.Message)
			}
		}
		if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return errors.Wrap(platform.ErrUnknownResource, "not found")
		}
	}
	return err
}

type channelHandle struct {
	s  *discordgo.Session
	id string
}

func (c *channelHandle) ID() string { return c.id }

func (c *channelHandle) Send(ctx context.Context, card model.StatusCard) (platform.MessageHandle, error) {
	msg, err := c.s.ChannelMessageSendEmbed(c.id, toEmbed(card), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return &messageHandle{s: c.s, channelID: c.id, id: msg.ID}, nil
}

func (c *channelHandle) Delete(ctx context.Context) error {
	if _, err := c.s.ChannelDelete(c.id, discordgo.WithContext(ctx)); err != nil {
		return mapError(err)
	}
	return nil
}

type messageHandle struct {
	s         *discordgo.Session
	channelID string
	id        string
}

func (m *messageHandle) ID() string { return m.id }

func (m *messageHandle) Edit(ctx context.Context, card model.StatusCard) error {
	if _, err := m.s.ChannelMessageEditEmbed(m.channelID, m.id, toEmbed(card), discordgo.WithContext(ctx)); err != nil {
		return mapError(err)
	}
	return nil
}
