package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/auth"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/platform"
)

// User-facing messages.
const (
	MsgUnauthorized   = "You are not allowed to use this bot."
	MsgNotFound       = "Product not found."
	MsgDuplicateName  = "A product with this name already exists."
	MsgDuplicateSlug  = "Another product already uses the channel for this name."
	MsgPersistence    = "The catalog could not be saved. Please try again."
	MsgExternal       = "The chat server rejected the request. Please try again."
	MsgUnknownCommand = "Unknown command."
	MsgInternal       = "Something went wrong. Please try again."
)

// Notes appended to a success reply when a side effect failed. The failure
// detail is logged, never shown.
const (
	NoteChannelNotDeleted = "the product channel could not be deleted"
	NoteCardNotUpdated    = "the status card could not be updated"
)

// Handler turns a Command into exactly one Reply.
type Handler struct {
	svc         *Service
	authz       *auth.Authorizer
	serverRoles platform.RoleSource
}

// NewHandler returns a Handler. serverRoles lists the roles that are granted
// send permission in new product channels when they are on the allow-list.
func NewHandler(svc *Service, authz *auth.Authorizer, serverRoles platform.RoleSource) *Handler {
	return &Handler{svc: svc, authz: authz, serverRoles: serverRoles}
}

// Handle authorizes and runs cmd.
func (h *Handler) Handle(ctx context.Context, cmd model.Command) model.Reply {
	if !h.authz.IsAuthorized(auth.RoleNames(cmd.Roles)) {
		obs.Warn(ctx, "command_denied", zap.String("kind", string(cmd.Kind)))
		return model.Reply{Content: MsgUnauthorized, Err: ErrUnauthorized}
	}

	switch cmd.Kind {
	case model.CommandAddProduct:
		return h.addProduct(ctx, cmd)
	case model.CommandRemoveProduct:
		return h.removeProduct(ctx, cmd)
	case model.CommandStockAdd:
		return h.adjustStock(ctx, cmd, DirectionAdd)
	case model.CommandStockRemove:
		return h.adjustStock(ctx, cmd, DirectionRemove)
	case model.CommandStockList:
		return model.Reply{Content: FormatStockList(h.svc.ListStock(ctx))}
	case model.CommandInfo:
		return h.info(ctx, cmd)
	default:
		return model.Reply{Content: MsgUnknownCommand, Err: ErrInvalidInput}
	}
}

func (h *Handler) addProduct(ctx context.Context, cmd model.Command) model.Reply {
	var allowed []model.Role
	if h.serverRoles != nil {
		allowed = h.authz.Allowed(h.serverRoles.Roles())
	}
	p, err := h.svc.AddProduct(ctx, NewProduct{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
		Color:       cmd.Color,
		ImageURL:    cmd.ImageURL,
	}, allowed)
	if err != nil {
		return denial(ctx, err)
	}
	return model.Reply{Content: fmt.Sprintf("Product added: %s", p.Name)}
}

func (h *Handler) removeProduct(ctx context.Context, cmd model.Command) model.Reply {
	p, out, err := h.svc.RemoveProduct(ctx, cmd.Name)
	if err != nil {
		return denial(ctx, err)
	}
	return model.Reply{Content: withNote(ctx, fmt.Sprintf("Product %s removed", p.Name), out, NoteChannelNotDeleted)}
}

func (h *Handler) adjustStock(ctx context.Context, cmd model.Command, dir Direction) model.Reply {
	p, out, err := h.svc.AdjustStock(ctx, cmd.Name, dir, cmd.Quantity)
	if err != nil {
		return denial(ctx, err)
	}
	return model.Reply{Content: withNote(ctx, fmt.Sprintf("Stock updated: %s — %d pcs.", p.Name, p.Stock), out, NoteCardNotUpdated)}
}

func (h *Handler) info(ctx context.Context, cmd model.Command) model.Reply {
	_, card, err := h.svc.Query(ctx, cmd.Name)
	if err != nil {
		return denial(ctx, err)
	}
	return model.Reply{Card: &card}
}

// withNote appends note to msg when the side effect reported by out failed.
func withNote(ctx context.Context, msg string, out model.Outcome, note string) string {
	if out.OK {
		return msg
	}
	obs.Warn(ctx, "side_effect_failed", zap.String("note", note), zap.String("detail", out.Detail))
	return msg + " (note: " + note + ")"
}

// denial maps a service error to its user message. Invalid input carries a
// message written for the requester, so its cause is shown; nothing else is.
func denial(ctx context.Context, err error) model.Reply {
	kind := Kind(err)
	var msg string
	switch kind {
	case ErrNotFound:
		msg = MsgNotFound
	case ErrDuplicateName:
		msg = MsgDuplicateName
	case ErrDuplicateSlug:
		msg = MsgDuplicateSlug
	case ErrPersistence:
		msg = MsgPersistence
	case ErrExternal:
		msg = MsgExternal
	case ErrInvalidInput:
		msg = "Invalid input."
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			msg = "Invalid input: " + e.Err.Error() + "."
		}
	default:
		obs.Error(ctx, "command_failed", zap.Error(err))
		return model.Reply{Content: MsgInternal, Err: err}
	}
	obs.Info(ctx, "command_rejected", zap.Error(err))
	return model.Reply{Content: msg, Err: kind}
}
