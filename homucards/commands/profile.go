package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/homucards/homucards"
	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var Profile = discord.SlashCommandCreate{
	Name:        "profile",
	Description: "View your collector profile",
}

func ProfileHandler(b *homucards.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		profile, err := b.Gacha.Profile(context.Background(), e.User().ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your profile")
		}

		name := profile.Username
		if name == "" {
			name = e.User().Username
		}

		embed := discord.NewEmbedBuilder().
			SetTitle(fmt.Sprintf("%s's Profile", name)).
			AddField("Total Pulls", fmt.Sprintf("%d", profile.TotalPulls), true).
			AddField("Distinct Cards", fmt.Sprintf("%d", profile.DistinctCards), true).
			SetColor(utils.EmbedDefaultColor)

		if profile.Username == "" {
			embed.SetFooter("Register a collector name with /username", "")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}
