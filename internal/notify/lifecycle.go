package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/pradiptars/clan-storage-bot/internal/models"
)

// Lifecycle notifications: one-off messages around bot startup, shutdown and
// item creation. All of these are best-effort; a failure is the caller's to
// log and swallow.

// StartupPayload announces that the bot is connected and ready.
func StartupPayload(now time.Time) Payload {
	p := newPayload(
		"🤖 Bot Clan Storage Aktif",
		"Bot berhasil terhubung dan siap digunakan!",
		ColorGreen,
		now,
	)
	p.Fields = []Field{
		{Name: "📊 Status", Value: "✅ Online dan Siap", Inline: true},
		{Name: "⏰ Waktu Aktif", Value: now.Format("2006-01-02 15:04:05 MST"), Inline: true},
		{Name: "🛠️ Commands Available", Value: "• `/add_item` - Tambah item baru\n• `/list_items` - Lihat semua item\n• `/check_expiring` - Cek item expire\n• `/status` - Status bot\n• `/export_items` - Export CSV"},
	}
	p.Footer = "Clan Storage Bot"
	return p
}

// ShutdownPayload announces that the bot is going down.
func ShutdownPayload(now time.Time) Payload {
	p := newPayload(
		"🛑 Bot Shutdown",
		"Bot telah dimatikan",
		ColorOrange,
		now,
	)
	p.Footer = "Bot akan restart otomatis jika menggunakan process manager"
	return p
}

// ItemAddedPayload announces a freshly stored item.
func ItemAddedPayload(now time.Time, item models.Item, retentionDays int, addedBy string) Payload {
	p := newPayload(
		"✅ Item Baru Ditambahkan",
		"Item baru telah ditambahkan ke storage clan",
		ColorGreen,
		now,
	)
	p.Fields = []Field{
		{Name: "📦 Nama Item", Value: item.Name, Inline: true},
		{Name: "🏷️ Tipe", Value: string(item.Type), Inline: true},
		{Name: "👥 Participant", Value: item.ParticipantList()},
		{Name: "📅 Dibuat", Value: item.CreatedAt.Format("2006-01-02"), Inline: true},
		{Name: "⏰ Expire", Value: item.ExpireAt.Format("2006-01-02"), Inline: true},
	}
	if addedBy != "" {
		p.Fields = append(p.Fields, Field{Name: "👤 Ditambahkan oleh", Value: addedBy, Inline: true})
	}
	p.Footer = "Jangan lupa gunakan sebelum expire!"
	return p
}

// ErrorPayload reports an internal failure to the ops channel. The message is
// truncated to keep the embed under Discord's field limit.
func ErrorPayload(now time.Time, errMessage, scope string) Payload {
	if len(errMessage) > 1000 {
		errMessage = errMessage[:1000]
	}

	p := newPayload(
		"❌ Bot Error",
		"Terjadi kesalahan pada bot",
		ColorRed,
		now,
	)
	p.Fields = []Field{
		{Name: "🐛 Error Message", Value: fmt.Sprintf("```%s```", errMessage)},
	}
	if scope != "" {
		p.Fields = append(p.Fields, Field{Name: "📍 Context", Value: scope})
	}
	p.Footer = "Bot mungkin memerlukan restart atau perbaikan"
	return p
}

// TestPayload exercises the webhook end to end.
func TestPayload(now time.Time) Payload {
	p := newPayload(
		"🧪 Test Webhook",
		"Webhook berfungsi dengan baik!",
		ColorBlue,
		now,
	)
	p.Footer = "Test notification"
	return p
}

// SendTest delivers the self-test payload.
func SendTest(ctx context.Context, t Transport, now time.Time) error {
	return t.Deliver(ctx, TestPayload(now))
}
