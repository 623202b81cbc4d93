package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/homucards/homucards"
	"github.com/ellavondegurechaff/homucards/homucards/gacha"
	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var Pull = discord.SlashCommandCreate{
	Name:        "pull",
	Description: "Pull a random card",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "series",
			Description:  "Series to pull from",
			Required:     false,
			Autocomplete: true,
		},
	},
}

func PullHandler(b *homucards.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx := context.Background()

		if seriesName, ok := e.SlashCommandInteractionData().OptString("series"); ok && strings.TrimSpace(seriesName) != "" {
			return executePull(ctx, b, e, strings.TrimSpace(seriesName))
		}

		// No series given: offer one button per category.
		categories, err := b.SeriesRepository.Categories(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load categories")
		}
		if len(categories) == 0 {
			return utils.EH.CreateErrorEmbed(e, "No cards have been loaded yet")
		}

		buttons := make([]discord.InteractiveComponent, 0, len(categories))
		for _, category := range categories {
			buttons = append(buttons, discord.NewPrimaryButton(
				utils.FormatDisplayName(category),
				fmt.Sprintf("/pull/cat/%s/%s", e.User().ID, category),
			))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Card Pull",
				Description: "Pick a category to pull from",
				Color:       utils.EmbedDefaultColor,
			}},
			Components: []discord.ContainerComponent{discord.NewActionRow(buttons...)},
		})
	}
}

// PullComponentHandler routes the /pull component interactions:
// category buttons ("/pull/cat/<userID>/<category>") and the series select
// menu ("/pull/series/<userID>/<category>"). Only the user who started the
// pull may use its components.
func PullComponentHandler(b *homucards.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		parts := strings.Split(strings.TrimPrefix(e.Data.CustomID(), "/pull/"), "/")
		if len(parts) < 3 {
			return utils.EH.CreateEphemeralError(e, "Invalid interaction")
		}
		action, userID := parts[0], parts[1]

		if e.User().ID.String() != userID {
			return utils.EH.CreateEphemeralError(e, "This pull belongs to someone else. Use /pull yourself!")
		}

		ctx := context.Background()

		switch action {
		case "cat":
			return showSeriesSelect(ctx, b, e, userID, parts[2])
		case "series":
			data, ok := e.Data.(discord.StringSelectMenuInteractionData)
			if !ok || len(data.Values) == 0 {
				return utils.EH.CreateEphemeralError(e, "Invalid selection")
			}
			return executePullUpdate(ctx, b, e, data.Values[0])
		default:
			return utils.EH.CreateEphemeralError(e, "Invalid interaction")
		}
	}
}

func showSeriesSelect(ctx context.Context, b *homucards.Bot, e *handler.ComponentEvent, userID, category string) error {
	series, err := b.SeriesRepository.ListByCategory(ctx, category)
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "Failed to load series")
	}
	if len(series) == 0 {
		return utils.EH.CreateEphemeralError(e, "No series in this category")
	}

	// Discord caps select menus at 25 options.
	if len(series) > 25 {
		series = series[:25]
	}

	options := make([]discord.StringSelectMenuOption, 0, len(series))
	for _, s := range series {
		options = append(options, discord.StringSelectMenuOption{
			Label: utils.FormatDisplayName(s.Name),
			Value: s.Name,
		})
	}

	return e.UpdateMessage(discord.MessageUpdate{
		Embeds: &[]discord.Embed{{
			Title:       "Card Pull",
			Description: fmt.Sprintf("Pick a series from **%s**", utils.FormatDisplayName(category)),
			Color:       utils.EmbedDefaultColor,
		}},
		Components: &[]discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewStringSelectMenu(
					fmt.Sprintf("/pull/series/%s/%s", userID, category),
					"Select a series",
					options...,
				),
			),
		},
	})
}

func executePull(ctx context.Context, b *homucards.Bot, e *handler.CommandEvent, seriesName string) error {
	result, err := b.Gacha.Pull(ctx, e.User().ID.String(), seriesName)
	if err != nil {
		if errors.Is(err, gacha.ErrNotFound) {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("Series `%s` not found", seriesName))
		}
		return utils.EH.CreateErrorEmbed(e, "Pull failed, try again later")
	}

	embed, file := pullEmbed(ctx, b, result)
	msg := discord.MessageCreate{Embeds: []discord.Embed{embed}}
	if file != nil {
		msg.Files = []*discord.File{file}
	}
	return e.CreateMessage(msg)
}

func executePullUpdate(ctx context.Context, b *homucards.Bot, e *handler.ComponentEvent, seriesName string) error {
	result, err := b.Gacha.Pull(ctx, e.User().ID.String(), seriesName)
	if err != nil {
		if errors.Is(err, gacha.ErrNotFound) {
			return utils.EH.CreateEphemeralError(e, fmt.Sprintf("Series `%s` not found", seriesName))
		}
		return utils.EH.CreateEphemeralError(e, "Pull failed, try again later")
	}

	embed, file := pullEmbed(ctx, b, result)
	update := discord.MessageUpdate{
		Embeds:     &[]discord.Embed{embed},
		Components: &[]discord.ContainerComponent{},
	}
	if file != nil {
		update.Files = []*discord.File{file}
	}
	return e.UpdateMessage(update)
}

// pullEmbed builds the announcement embed. A missing image downgrades to a
// text-only embed; the grant already happened and is never rolled back.
func pullEmbed(ctx context.Context, b *homucards.Bot, result *gacha.GrantResult) (discord.Embed, *discord.File) {
	builder := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("You pulled **%s**!", utils.FormatDisplayName(result.CardName))).
		SetDescription(fmt.Sprintf("Series: **%s**\nYou now own **%d** cop%s of this card.",
			utils.FormatDisplayName(result.SeriesName),
			result.QuantityAfter,
			pluralCopy(result.QuantityAfter))).
		SetColor(utils.SuccessColor)

	data, err := b.Assets.Fetch(ctx, result.Category, result.SeriesName, result.Filename)
	if err != nil {
		slog.Warn("Card image unavailable",
			slog.String("type", "assets"),
			slog.String("series", result.SeriesName),
			slog.String("filename", result.Filename),
			slog.Any("error", err))
		builder.SetFooter("Card image unavailable", "")
		return builder.Build(), nil
	}

	builder.SetImage("attachment://" + result.Filename)
	return builder.Build(), &discord.File{
		Name:   result.Filename,
		Reader: bytes.NewReader(data),
	}
}

func pluralCopy(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// PullAutocompleteHandler fuzzy-matches the typed prefix against all series
// names. An empty query lists the first 25 series alphabetically.
func PullAutocompleteHandler(b *homucards.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		var query string
		if focused := e.Data.Focused(); focused.Name == "series" && focused.Value != nil {
			if err := json.Unmarshal(focused.Value, &query); err != nil {
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
		}
		query = strings.TrimSpace(query)

		series, err := b.SeriesRepository.GetAll(context.Background())
		if err != nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		names := make([]string, 0, len(series))
		for _, s := range series {
			names = append(names, s.Name)
		}

		if query != "" {
			matches := fuzzy.Find(query, names)
			matched := make([]string, 0, len(matches))
			for _, m := range matches {
				matched = append(matched, m.Str)
			}
			names = matched
		}

		if len(names) > 25 {
			names = names[:25]
		}

		choices := make([]discord.AutocompleteChoice, 0, len(names))
		for _, name := range names {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  utils.FormatDisplayName(name),
				Value: name,
			})
		}
		return e.AutocompleteResult(choices)
	}
}
