package bot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/notify"
	"github.com/pradiptars/clan-storage-bot/internal/service"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "add_item",
			Description: "🎒 Tambah item baru ke storage clan",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "nama_item",
					Description: "Nama item yang akan ditambahkan",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tipe",
					Description: "Jenis item (UNIQUE/RED/CONSUMABLE)",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "UNIQUE", Value: "UNIQUE"},
						{Name: "RED", Value: "RED"},
						{Name: "CONSUMABLE", Value: "CONSUMABLE"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "participant",
					Description: "Nama karakter yang ikut (pisahkan dengan koma)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "created_date",
					Description: "Tanggal dibuat (opsional, contoh: 2024-01-15 atau 15/01/2024)",
				},
			},
		},
		{
			Name:        "list_items",
			Description: "📋 Lihat semua item di storage clan",
		},
		{
			Name:        "check_expiring",
			Description: "⏰ Cek item yang akan expire",
		},
		{
			Name:        "status",
			Description: "📊 Cek status bot dan koneksi",
		},
		{
			Name:        "export_items",
			Description: "📄 Export semua item sebagai CSV",
		},
	}
}

func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	for _, cmd := range commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(appID, b.cfg.GuildID, cmd); err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
	}
	b.logger.Info("slash commands registered", zap.Int("count", len(commandDefinitions())))
	return nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	userID := interactionUserID(i)

	if b.metrics != nil {
		b.metrics.CommandsTotal.WithLabelValues(data.Name).Inc()
	}
	b.logger.Info("command invoked",
		zap.String("command", data.Name),
		zap.String("user_id", userID),
	)

	if !b.isAuthorized(userID) {
		b.respondEphemeral(i, errorEmbed("🚫 Akses Ditolak", "Anda tidak memiliki izin untuk menggunakan command ini."))
		return
	}

	if b.limiter != nil && !b.limiter.Allow(userID) {
		b.respondEphemeral(i, errorEmbed("⏳ Terlalu Banyak Request", "Tunggu sebentar sebelum menggunakan command lagi."))
		return
	}

	if err := b.deferResponse(i); err != nil {
		b.logger.Error("failed to defer interaction", zap.Error(err))
		return
	}

	switch data.Name {
	case "add_item":
		b.handleAddItem(i, data)
	case "list_items":
		b.handleListItems(i)
	case "check_expiring":
		b.handleCheckExpiring(i)
	case "status":
		b.handleStatus(i)
	case "export_items":
		b.handleExportItems(i)
	}
}

func (b *Bot) handleAddItem(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)

	req := service.AddItemRequest{
		Name:         stringOption(opts, "nama_item"),
		Type:         stringOption(opts, "tipe"),
		Participants: stringOption(opts, "participant"),
		CreatedDate:  stringOption(opts, "created_date"),
		AddedBy:      interactionDisplayName(i),
	}

	item, err := b.items.AddItem(b.ctx, req)
	if err != nil {
		b.followupEphemeral(i, addItemErrorEmbed(err))
		return
	}

	embed := successEmbed("✅ Item Berhasil Ditambahkan")
	embed.Timestamp = b.items.Now().Format(time.RFC3339)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "📦 Nama Item", Value: item.Name, Inline: true},
		{Name: "🏷️ Tipe", Value: string(item.Type), Inline: true},
		{Name: "👥 Participant", Value: item.ParticipantList()},
		{Name: "📅 Dibuat", Value: item.CreatedAt.Format("2006-01-02"), Inline: true},
		{Name: "⏰ Expire", Value: item.ExpireAt.Format("2006-01-02"), Inline: true},
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Ditambahkan oleh %s", req.AddedBy),
	}

	b.followup(i, embed)
}

func addItemErrorEmbed(err error) *discordgo.MessageEmbed {
	switch {
	case appErrors.Is(err, appErrors.ErrInvalidItemType):
		return errorEmbed("❌ Tipe Item Tidak Valid", "Tipe harus salah satu dari: UNIQUE, RED, CONSUMABLE")
	case appErrors.Is(err, appErrors.ErrInvalidDate):
		return errorEmbed("❌ Format Tanggal Tidak Valid",
			"Contoh format yang benar:\n• `2024-01-15` (YYYY-MM-DD)\n• `15/01/2024` (DD/MM/YYYY)\n• `15-01-2024` (DD-MM-YYYY)")
	case appErrors.Is(err, appErrors.ErrFutureDate):
		return errorEmbed("❌ Format Tanggal Tidak Valid", "Tanggal tidak boleh di masa depan.")
	case appErrors.Is(err, appErrors.ErrValidation):
		return errorEmbed("❌ Input Tidak Valid", "Periksa kembali nama item dan participant.")
	default:
		return errorEmbed("❌ Gagal Menambahkan Item", "Terjadi kesalahan saat menyimpan item. Silakan coba lagi.")
	}
}

func (b *Bot) handleListItems(i *discordgo.InteractionCreate) {
	items, err := b.items.ListItems(b.ctx)
	if err != nil {
		b.logger.Error("list items failed", zap.Error(err))
		b.followupEphemeral(i, errorEmbed("❌ Terjadi Kesalahan", "Maaf, terjadi kesalahan saat mengambil data. Silakan coba lagi nanti."))
		return
	}

	if len(items) == 0 {
		b.followup(i, &discordgo.MessageEmbed{
			Title:       "📭 Storage Kosong",
			Description: "Belum ada item yang tersimpan di storage clan.",
			Color:       notify.ColorOrange,
		})
		return
	}

	pages := b.batcher.BuildInventoryPages(b.items.Now(), items)
	b.followupPages(i, pages)
}

func (b *Bot) handleCheckExpiring(i *discordgo.InteractionCreate) {
	items, err := b.items.ExpiringItems(b.ctx)
	if err != nil {
		b.logger.Error("check expiring failed", zap.Error(err))
		b.followupEphemeral(i, errorEmbed("❌ Terjadi Kesalahan", "Maaf, terjadi kesalahan saat mengecek item. Silakan coba lagi nanti."))
		return
	}

	if len(items) == 0 {
		b.followup(i, &discordgo.MessageEmbed{
			Title:       "✅ Tidak Ada Item yang Akan Expire",
			Description: fmt.Sprintf("Tidak ada item yang akan expire dalam %d hari ke depan.", b.items.HorizonDays()),
			Color:       notify.ColorGreen,
		})
		return
	}

	pages := b.batcher.BuildExpiryReport(b.items.Now(), items)
	b.followupPages(i, pages)
}

func (b *Bot) handleStatus(i *discordgo.InteractionCreate) {
	status := b.items.Status(b.ctx)

	storageText := "❌ Tidak terhubung"
	if status.StorageConnected {
		storageText = "✅ Terhubung"
	}

	embed := &discordgo.MessageEmbed{
		Title:     "📊 Status Bot",
		Color:     notify.ColorBlue,
		Timestamp: b.items.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📊 Storage", Value: storageText, Inline: true},
			{Name: "⏰ Uptime", Value: status.Uptime.Round(time.Second).String(), Inline: true},
			{Name: "📦 Total Items", Value: fmt.Sprintf("%d", status.TotalItems), Inline: true},
			{Name: "⚠️ Items Akan Expire", Value: fmt.Sprintf("%d", status.ExpiringItems), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Dicek oleh %s", interactionDisplayName(i)),
		},
	}

	b.followup(i, embed)
}

func (b *Bot) handleExportItems(i *discordgo.InteractionCreate) {
	data, err := b.items.ExportCSV(b.ctx)
	if err != nil {
		b.logger.Error("export items failed", zap.Error(err))
		b.followupEphemeral(i, errorEmbed("❌ Terjadi Kesalahan", "Maaf, export gagal. Silakan coba lagi nanti."))
		return
	}

	filename := fmt.Sprintf("storage-clan-%s.csv", b.items.Now().Format("2006-01-02"))
	_, err = b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: "📄 Export storage clan:",
		Files: []*discordgo.File{
			{Name: filename, ContentType: "text/csv", Reader: bytes.NewReader(data)},
		},
	})
	if err != nil {
		b.logger.Error("failed to send export followup", zap.Error(err))
	}
}

// followupPages sends payload pages in order with the configured inter-page
// delay. A failed page is logged and skipped.
func (b *Bot) followupPages(i *discordgo.InteractionCreate, pages []notify.Payload) {
	for n, page := range pages {
		if n > 0 {
			time.Sleep(b.pageDelay)
		}
		b.followup(i, embedFromPayload(page))
	}
}

func (b *Bot) deferResponse(i *discordgo.InteractionCreate) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction", zap.Error(err))
	}
}

func (b *Bot) followup(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		b.logger.Error("failed to send followup", zap.Error(err))
	}
}

func (b *Bot) followupEphemeral(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.logger.Error("failed to send followup", zap.Error(err))
	}
}

func optionMap(data discordgo.ApplicationCommandInteractionData) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		opts[opt.Name] = opt
	}
	return opts
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func interactionDisplayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		if i.Member.Nick != "" {
			return i.Member.Nick
		}
		if i.Member.User != nil {
			return i.Member.User.Username
		}
	}
	if i.User != nil {
		return i.User.Username
	}
	return "unknown"
}
