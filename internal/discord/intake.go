package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// Messages sent by the intake itself, before a command reaches the queue.
const (
	MsgShuttingDown = "The bot is shutting down. Please try again later."
	MsgUnsupported  = "Unknown command."
)

// ErrUnsupported is returned by ParseCommand for commands the bot does not know.
var ErrUnsupported = errors.New("unsupported command")

// Responder is the subset of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// RoleResolver maps member role ids to roles.
type RoleResolver interface {
	RolesByID(ids []string) []model.Role
}

// Enqueuer accepts commands for processing.
type Enqueuer interface {
	Enqueue(cmd model.Command) (uint64, bool)
}

// Intake turns slash command interactions into queued commands and delivers
// each command's reply as an edit of a deferred ephemeral response.
type Intake struct {
	resp  Responder
	roles RoleResolver
	queue Enqueuer
}

// NewIntake returns an Intake.
func NewIntake(resp Responder, roles RoleResolver, queue Enqueuer) *Intake {
	return &Intake{resp: resp, roles: roles, queue: queue}
}

// OnInteractionCreate is registered with Session.AddHandler.
func (in *Intake) OnInteractionCreate(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	in.Handle(ic.Interaction)
}

// Handle processes one interaction. Anything other than an application
// command is ignored.
func (in *Intake) Handle(i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	reqID := uuid.NewString()
	log := obs.Logger.With(zap.String("request_id", reqID), zap.String("command", data.Name))

	cmd, err := ParseCommand(data)
	if err != nil {
		log.Warn("interaction rejected", zap.Error(err))
		in.respondNow(i, MsgUnsupported)
		return
	}
	cmd.RequestID = reqID
	if i.Member != nil {
		cmd.Roles = in.roles.RolesByID(i.Member.Roles)
	}

	if err := in.resp.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		log.Error("defer interaction failed", zap.Error(err))
		return
	}

	cmd.Reply = func(r model.Reply) { in.deliver(i, r, log) }
	seq, ok := in.queue.Enqueue(cmd)
	if !ok {
		log.Info("interaction refused during shutdown")
		in.deliver(i, model.Reply{Content: MsgShuttingDown}, log)
		return
	}
	log.Debug("command enqueued", zap.Uint64("sequence", seq), zap.String("kind", string(cmd.Kind)))
}

func (in *Intake) respondNow(i *discordgo.Interaction, content string) {
	err := in.resp.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		obs.Logger.Error("interaction response failed", zap.Error(err))
	}
}

func (in *Intake) deliver(i *discordgo.Interaction, r model.Reply, log *zap.Logger) {
	content := r.Content
	embeds := []*discordgo.MessageEmbed{}
	if r.Card != nil {
		embeds = append(embeds, toEmbed(*r.Card))
	}
	if _, err := in.resp.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content, Embeds: &embeds}); err != nil {
		log.Error("reply delivery failed", zap.Error(err))
	}
}

// ParseCommand maps slash command data onto a model.Command.
func ParseCommand(data discordgo.ApplicationCommandInteractionData) (model.Command, error) {
	opts := optionMap(data.Options)
	switch data.Name {
	case CmdAddProduct:
		cmd := model.Command{
			Kind:        model.CommandAddProduct,
			Name:        stringOption(opts, OptName),
			Description: stringOption(opts, OptDescription),
			Price:       decimal.NewFromFloat(floatOption(opts, OptPrice)),
			Stock:       intOption(opts, OptStock),
			Color:       stringOption(opts, OptColor),
		}
		if id := stringOption(opts, OptImage); id != "" && data.Resolved != nil {
			if att, ok := data.Resolved.Attachments[id]; ok && att != nil {
				cmd.ImageURL = att.URL
			}
		}
		return cmd, nil
	case CmdRemoveProduct:
		return model.Command{Kind: model.CommandRemoveProduct, Name: stringOption(opts, OptName)}, nil
	case CmdInfo:
		return model.Command{Kind: model.CommandInfo, Name: stringOption(opts, OptName)}, nil
	case CmdStock:
		if len(data.Options) == 0 || data.Options[0] == nil {
			return model.Command{}, errors.Wrap(ErrUnsupported, "stock without subcommand")
		}
		sub := data.Options[0]
		subOpts := optionMap(sub.Options)
		switch sub.Name {
		case SubList:
			return model.Command{Kind: model.CommandStockList}, nil
		case SubAdd:
			return model.Command{Kind: model.CommandStockAdd, Name: stringOption(subOpts, OptName), Quantity: intOption(subOpts, OptQty)}, nil
		case SubRemove:
			return model.Command{Kind: model.CommandStockRemove, Name: stringOption(subOpts, OptName), Quantity: intOption(subOpts, OptQty)}, nil
		}
		return model.Command{}, errors.Wrapf(ErrUnsupported, "stock %s", sub.Name)
	}
	return model.Command{}, errors.Wrapf(ErrUnsupported, "%q", data.Name)
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		if o != nil {
			m[o.Name] = o
		}
	}
	return m
}

// Option values arrive JSON-decoded, so numbers are float64.

func stringOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := m[name]; ok {
		if s, ok := o.Value.(string); ok {
			return s
		}
	}
	return ""
}

func floatOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) float64 {
	o, ok := m[name]
	if !ok {
		return 0
	}
	switch v := o.Value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func intOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	o, ok := m[name]
	if !ok {
		return 0
	}
	switch v := o.Value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
