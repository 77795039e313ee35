// Package platform declares the narrow capabilities the catalog needs from the
// chat platform: creating and deleting channels and sending and editing cards.
package platform

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
)

// ErrUnknownResource is returned when a channel or message no longer exists.
var ErrUnknownResource = errors.New("unknown platform resource")

// Permission is a bit set of channel permissions.
type Permission int64

// PermSendMessages allows posting messages in a channel.
const PermSendMessages Permission = 1 << 11

// Overwrite is a per-role permission override applied to a channel.
type Overwrite struct {
	// RoleID is ignored when Everyone is set.
	RoleID   string
	Everyone bool
	Allow    Permission
	Deny     Permission
}

// Guild creates channels and re-attaches to existing ones by id.
type Guild interface {
	CreateChannel(ctx context.Context, name string, overwrites []Overwrite) (ChannelHandle, error)
	Channel(id string) ChannelHandle
	Message(channelID, messageID string) MessageHandle
}

// ChannelHandle is a channel owned by one product.
type ChannelHandle interface {
	ID() string
	Send(ctx context.Context, card model.StatusCard) (MessageHandle, error)
	// Delete removes the channel. ErrUnknownResource means it was already gone.
	Delete(ctx context.Context) error
}

// MessageHandle is the status message of one product.
type MessageHandle interface {
	ID() string
	// Edit replaces the card. ErrUnknownResource means the message was deleted.
	Edit(ctx context.Context, card model.StatusCard) error
}

// RoleSource yields a set of roles, such as those defined on the server.
type RoleSource interface {
	Roles() []model.Role
}
