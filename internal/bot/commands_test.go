package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradiptars/clan-storage-bot/internal/notify"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

func TestCommandDefinitions(t *testing.T) {
	defs := commandDefinitions()
	require.Len(t, defs, 5)

	names := make(map[string]*discordgo.ApplicationCommand, len(defs))
	for _, d := range defs {
		names[d.Name] = d
	}

	addItem, ok := names["add_item"]
	require.True(t, ok)
	require.Len(t, addItem.Options, 4)
	assert.True(t, addItem.Options[0].Required)
	assert.True(t, addItem.Options[1].Required)
	assert.True(t, addItem.Options[2].Required)
	assert.False(t, addItem.Options[3].Required, "created_date is optional")
	assert.Len(t, addItem.Options[1].Choices, 3)

	for _, name := range []string{"list_items", "check_expiring", "status", "export_items"} {
		_, ok := names[name]
		assert.True(t, ok, "missing command %s", name)
	}
}

func TestEmbedFromPayload(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	p := notify.Payload{
		Title:       "title",
		Description: "desc",
		Color:       notify.ColorBlue,
		Timestamp:   now,
		Footer:      "foot",
		Fields: []notify.Field{
			{Name: "a", Value: "1", Inline: true},
			{Name: "b", Value: "2"},
		},
	}

	embed := embedFromPayload(p)
	assert.Equal(t, "title", embed.Title)
	assert.Equal(t, notify.ColorBlue, embed.Color)
	assert.Equal(t, "2024-06-20T12:00:00Z", embed.Timestamp)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "foot", embed.Footer.Text)
	require.Len(t, embed.Fields, 2)
	assert.True(t, embed.Fields[0].Inline)
}

func TestEmbedFromPayloadZeroTimestamp(t *testing.T) {
	embed := embedFromPayload(notify.Payload{Title: "t"})
	assert.Empty(t, embed.Timestamp)
	assert.Nil(t, embed.Footer)
}

func TestAddItemErrorEmbed(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
	}{
		{"invalid type", appErrors.New(appErrors.ErrInvalidItemType.Code, "bad"), "❌ Tipe Item Tidak Valid"},
		{"invalid date", appErrors.New(appErrors.ErrInvalidDate.Code, "bad"), "❌ Format Tanggal Tidak Valid"},
		{"future date", appErrors.New(appErrors.ErrFutureDate.Code, "bad"), "❌ Format Tanggal Tidak Valid"},
		{"validation", appErrors.New(appErrors.ErrValidation.Code, "bad"), "❌ Input Tidak Valid"},
		{"unknown", errors.New("boom"), "❌ Gagal Menambahkan Item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := addItemErrorEmbed(tt.err)
			assert.Equal(t, tt.wantTitle, embed.Title)
			assert.Equal(t, notify.ColorRed, embed.Color)
		})
	}
}

func TestInteractionIdentity(t *testing.T) {
	member := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{
				Nick: "Clan Leader",
				User: &discordgo.User{ID: "42", Username: "alice"},
			},
		},
	}
	assert.Equal(t, "42", interactionUserID(member))
	assert.Equal(t, "Clan Leader", interactionDisplayName(member))

	noNick := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice"}},
		},
	}
	assert.Equal(t, "alice", interactionDisplayName(noNick))

	dm := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			User: &discordgo.User{ID: "7", Username: "bob"},
		},
	}
	assert.Equal(t, "7", interactionUserID(dm))
	assert.Equal(t, "bob", interactionDisplayName(dm))

	empty := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}
	assert.Equal(t, "", interactionUserID(empty))
	assert.Equal(t, "unknown", interactionDisplayName(empty))
}

func TestIsAuthorized(t *testing.T) {
	b := &Bot{authorized: map[string]struct{}{"42": {}}}
	assert.True(t, b.isAuthorized("42"))
	assert.False(t, b.isAuthorized("7"))
}
