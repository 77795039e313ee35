// Package discord connects the catalog to a Discord server: it registers the
// slash commands, turns interactions into queued commands and implements the
// platform capabilities over the REST API.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// Slash command, subcommand and option names.
const (
	CmdAddProduct    = "addproduct"
	CmdRemoveProduct = "removeproduct"
	CmdStock         = "stock"
	CmdInfo          = "info"

	SubList   = "list"
	SubAdd    = "add"
	SubRemove = "remove"

	OptName        = "name"
	OptDescription = "description"
	OptPrice       = "price"
	OptStock       = "stock"
	OptColor       = "color"
	OptImage       = "image"
	OptQty         = "qty"
)

func nameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptName,
		Description: "Product name",
		Required:    true,
		MaxLength:   100,
	}
}

func qtyOption() *discordgo.ApplicationCommandOption {
	one := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        OptQty,
		Description: "Quantity",
		Required:    true,
		MinValue:    &one,
	}
}

// Commands returns the slash command schema of the bot.
func Commands() []*discordgo.ApplicationCommand {
	zero := 0.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdAddProduct,
			Description: "Add a new product",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption(),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptDescription,
					Description: "Description",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        OptPrice,
					Description: "Price",
					Required:    true,
					MinValue:    &zero,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptStock,
					Description: "Stock",
					Required:    true,
					MinValue:    &zero,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptColor,
					Description: "Card color as HEX (e.g. #00FF00)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        OptImage,
					Description: "Product image",
				},
			},
		},
		{
			Name:        CmdRemoveProduct,
			Description: "Delete a product by name",
			Options:     []*discordgo.ApplicationCommandOption{nameOption()},
		},
		{
			Name:        CmdStock,
			Description: "Manage stock",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubList,
					Description: "Show stock",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubAdd,
					Description: "Increase stock",
					Options:     []*discordgo.ApplicationCommandOption{nameOption(), qtyOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubRemove,
					Description: "Decrease stock",
					Options:     []*discordgo.ApplicationCommandOption{nameOption(), qtyOption()},
				},
			},
		},
		{
			Name:        CmdInfo,
			Description: "Show product details",
			Options:     []*discordgo.ApplicationCommandOption{nameOption()},
		},
	}
}

// Register replaces the guild commands of the application with Commands().
func Register(ctx context.Context, s *discordgo.Session, appID, guildID string) error {
	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "register slash commands")
	}
	obs.Logger.Info("slash commands registered", zap.Int("count", len(cmds)), zap.String("guild_id", guildID))
	return nil
}
