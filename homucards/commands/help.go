package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "How to use the bot",
}

func HelpHandler() handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "HomuCards",
				Description: "Collect cards from your favorite series!\n\n" +
					"`/pull [series]` - pull a random card, or browse by category\n" +
					"`/inventory` - browse your collection\n" +
					"`/profile` - your pull count and collection size\n" +
					"`/username <name>` - register your collector name (once!)\n",
				Color: utils.InfoColor,
			}},
		})
	}
}
