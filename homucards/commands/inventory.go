package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/homucards/homucards"
	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var Inventory = discord.SlashCommandCreate{
	Name:        "inventory",
	Description: "View your card collection",
}

func InventoryHandler(b *homucards.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx := context.Background()
		userID := e.User().ID.String()

		first, err := b.Gacha.Page(ctx, userID, 0)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load your collection")
		}

		if first.TotalCards == 0 {
			return utils.EH.CreateInfoEmbed(e, "Your collection is empty. Use `/pull` to get your first card!")
		}

		totalPages := first.PageCount()
		totalCards := first.TotalCards

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				// Each page is fetched fresh so pulls made while browsing
				// show up on the next button press.
				inv, err := b.Gacha.Page(ctx, userID, page)
				if err != nil {
					embed.SetTitle("Your Collection").
						SetDescription("Failed to load this page").
						SetColor(utils.ErrorColor)
					return
				}

				var description strings.Builder
				description.WriteString("```\n")
				for i, entry := range inv.Entries {
					description.WriteString(fmt.Sprintf("%2d. %s x%d\n",
						page*inv.PerPage+i+1,
						utils.FormatDisplayName(entry.CardName),
						entry.Quantity))
				}
				if len(inv.Entries) == 0 {
					description.WriteString("Nothing on this page\n")
				}
				description.WriteString("```")

				embed.
					SetTitle("Your Collection").
					SetDescription(description.String()).
					SetColor(utils.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d distinct cards", page+1, totalPages, totalCards), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
