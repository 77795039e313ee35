// Package platformtest provides an in-memory platform.Guild for tests.
package platformtest

import (
	"context"
	"strconv"
	"sync"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/platform"
)

// ChannelState is a snapshot of one fake channel.
type ChannelState struct {
	ID         string
	Name       string
	Overwrites []platform.Overwrite
	Messages   map[string]model.StatusCard
}

// Guild is a deterministic in-memory chat server. The *Err fields, when set,
// make the matching call fail without side effects.
type Guild struct {
	mu       sync.Mutex
	nextID   int
	channels map[string]*ChannelState
	order    []string
	calls    map[string]int

	CreateErr error
	SendErr   error
	EditErr   error
	DeleteErr error
}

// New returns an empty Guild.
func New() *Guild {
	return &Guild{channels: make(map[string]*ChannelState), calls: make(map[string]int)}
}

var _ platform.Guild = (*Guild)(nil)

func (g *Guild) newID() string {
	g.nextID++
	return strconv.Itoa(1000 + g.nextID)
}

func (g *Guild) CreateChannel(_ context.Context, name string, overwrites []platform.Overwrite) (platform.ChannelHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["create"]++
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	id := g.newID()
	g.channels[id] = &ChannelState{
		ID:         id,
		Name:       name,
		Overwrites: append([]platform.Overwrite(nil), overwrites...),
		Messages:   make(map[string]model.StatusCard),
	}
	g.order = append(g.order, id)
	return &channelHandle{g: g, id: id}, nil
}

func (g *Guild) Channel(id string) platform.ChannelHandle {
	return &channelHandle{g: g, id: id}
}

func (g *Guild) Message(channelID, messageID string) platform.MessageHandle {
	return &messageHandle{g: g, channelID: channelID, id: messageID}
}

// Calls returns how many times op ("create", "send", "edit", "delete") was invoked.
func (g *Guild) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// ChannelCount returns the number of live channels.
func (g *Guild) ChannelCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.channels)
}

// ChannelByName finds a live channel by name.
func (g *Guild) ChannelByName(name string) (ChannelState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range g.order {
		if ch, ok := g.channels[id]; ok && ch.Name == name {
			return copyState(ch), true
		}
	}
	return ChannelState{}, false
}

// Card returns the current card of a message.
func (g *Guild) Card(channelID, messageID string) (model.StatusCard, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.channels[channelID]
	if !ok {
		return model.StatusCard{}, false
	}
	card, ok := ch.Messages[messageID]
	return card, ok
}

// RemoveChannel deletes a channel behind the bot's back.
func (g *Guild) RemoveChannel(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.channels, id)
}

// RemoveMessage deletes a message behind the bot's back.
func (g *Guild) RemoveMessage(channelID, messageID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.channels[channelID]; ok {
		delete(ch.Messages, messageID)
	}
}

func copyState(ch *ChannelState) ChannelState {
	out := ChannelState{
		ID:         ch.ID,
		Name:       ch.Name,
		Overwrites: append([]platform.Overwrite(nil), ch.Overwrites...),
		Messages:   make(map[string]model.StatusCard, len(ch.Messages)),
	}
	for k, v := range ch.Messages {
		out.Messages[k] = v
	}
	return out
}

type channelHandle struct {
	g  *Guild
	id string
}

func (c *channelHandle) ID() string { return c.id }

func (c *channelHandle) Send(_ context.Context, card model.StatusCard) (platform.MessageHandle, error) {
	c.g.mu.Lock()
	defer c.g.mu.Unlock()
	c.g.calls["send"]++
	if c.g.SendErr != nil {
		return nil, c.g.SendErr
	}
	ch, ok := c.g.channels[c.id]
	if !ok {
		return nil, platform.ErrUnknownResource
	}
	id := c.g.newID()
	ch.Messages[id] = card
	return &messageHandle{g: c.g, channelID: c.id, id: id}, nil
}

func (c *channelHandle) Delete(_ context.Context) error {
	c.g.mu.Lock()
	defer c.g.mu.Unlock()
	c.g.calls["delete"]++
	if c.g.DeleteErr != nil {
		return c.g.DeleteErr
	}
	if _, ok := c.g.channels[c.id]; !ok {
		return platform.ErrUnknownResource
	}
	delete(c.g.channels, c.id)
	return nil
}

type messageHandle struct {
	g         *Guild
	channelID string
	id        string
}

func (m *messageHandle) ID() string { return m.id }

func (m *messageHandle) Edit(_ context.Context, card model.StatusCard) error {
	m.g.mu.Lock()
	defer m.g.mu.Unlock()
	m.g.calls["edit"]++
	if m.g.EditErr != nil {
		return m.g.EditErr
	}
	ch, ok := m.g.channels[m.channelID]
	if !ok {
		return platform.ErrUnknownResource
	}
	if _, ok := ch.Messages[m.id]; !ok {
		return platform.ErrUnknownResource
	}
	ch.Messages[m.id] = card
	return nil
}
