package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Pull,
	Inventory,
	Username,
	Profile,
	Help,
	RemoveCard,
}
