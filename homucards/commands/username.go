package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/homucards/homucards"
	"github.com/ellavondegurechaff/homucards/homucards/gacha"
	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var Username = discord.SlashCommandCreate{
	Name:        "username",
	Description: "Register your collector name (one time only)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "3-15 characters: letters, digits, underscore",
			Required:    true,
		},
	},
}

func UsernameHandler(b *homucards.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		name := e.SlashCommandInteractionData().String("name")

		err := b.Gacha.RegisterUsername(context.Background(), e.User().ID.String(), name)
		switch {
		case err == nil:
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Welcome, **%s**! Your collector name is registered.", name))
		case errors.Is(err, gacha.ErrInvalidUsername):
			return utils.EH.CreateErrorEmbed(e, "Usernames must be 3-15 characters: letters, digits or underscore")
		case errors.Is(err, gacha.ErrUsernameTaken):
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("`%s` is already taken", name))
		case errors.Is(err, gacha.ErrUsernameSet):
			return utils.EH.CreateErrorEmbed(e, "You already registered a collector name, it cannot be changed")
		default:
			return utils.EH.CreateErrorEmbed(e, "Registration failed, try again later")
		}
	}
}
