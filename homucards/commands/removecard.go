package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/homucards/homucards"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var RemoveCard = discord.SlashCommandCreate{
	Name:        "removecard",
	Description: "Remove a card from the catalog by ID",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "id",
			Description: "The ID of the card to remove",
			Required:    true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "confirm",
			Description: "Confirm that you want to remove this card",
			Required:    true,
		},
	},
}

func RemoveCardHandler(b *homucards.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		cardID := int64(e.SlashCommandInteractionData().Int("id"))
		confirm := e.SlashCommandInteractionData().Bool("confirm")

		if !confirm {
			return utils.EH.CreateErrorEmbed(e, "You must set the confirm option to true to remove a card")
		}

		ctx := context.Background()
		card, err := b.CardRepository.GetByID(ctx, cardID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No card with ID `%d`", cardID))
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to look up card")
		}

		if err := b.CardRepository.Delete(ctx, cardID); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to remove card")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Removed **%s** (ID %d) from the catalog",
			utils.FormatDisplayName(card.Name), cardID))
	}
}
