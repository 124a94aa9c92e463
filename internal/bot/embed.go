package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pradiptars/clan-storage-bot/internal/notify"
)

// embedFromPayload converts a transport-neutral payload into a Discord embed.
func embedFromPayload(p notify.Payload) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
		Color:       p.Color,
	}

	if !p.Timestamp.IsZero() {
		embed.Timestamp = p.Timestamp.Format(time.RFC3339)
	}
	if p.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: p.Footer}
	}
	for _, f := range p.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return embed
}

func errorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       notify.ColorRed,
	}
}

func successEmbed(title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: notify.ColorGreen,
	}
}
