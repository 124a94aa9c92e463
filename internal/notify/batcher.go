// Package notify builds and delivers the bot's outbound messages: expiry
// alerts, inventory listings, and lifecycle notifications.
package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pradiptars/clan-storage-bot/internal/expiry"
	"github.com/pradiptars/clan-storage-bot/internal/models"
)

// DefaultPageSize is the number of item summaries per payload.
const DefaultPageSize = 10

// Batcher partitions expiring items into payload pages.
type Batcher struct {
	PageSize    int
	HorizonDays int
}

// NewBatcher builds a batcher, applying defaults for non-positive values.
func NewBatcher(pageSize, horizonDays int) *Batcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if horizonDays <= 0 {
		horizonDays = expiry.DefaultHorizonDays
	}
	return &Batcher{PageSize: pageSize, HorizonDays: horizonDays}
}

// BuildAlert turns a set of expiring items into an ordered payload sequence.
// The first payload carries the summary header, the first page of item lines,
// the aggregated participant roster, and the call-to-action footer; each
// subsequent payload carries only a continuation header and its slice of
// lines. An empty input produces no payloads at all.
func (b *Batcher) BuildAlert(now time.Time, items []models.Item) []Payload {
	if len(items) == 0 {
		return nil
	}

	summaries := make([]string, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, itemSummary(now, item))
	}
	pages := chunk(summaries, b.PageSize)

	roster := participantRoster(items)

	first := newPayload(
		"⚠️ PERINGATAN: Item Akan Expire!",
		fmt.Sprintf("Ada **%d** item yang akan expire dalam %d hari:", len(items), b.HorizonDays),
		ColorOrange,
		now,
	)
	first.Content = "🚨 @here **PERINGATAN ITEM EXPIRE!** 🚨"
	first.Fields = []Field{
		{Name: "📦 Daftar Item", Value: strings.Join(pages[0], "\n\n")},
		{Name: "👥 Participant Terlibat", Value: strings.Join(roster, ", ")},
		{Name: "📝 Tindakan yang Diperlukan", Value: "• Gunakan item sebelum expire\n• Koordinasi dengan participant lain\n• Update storage jika item sudah digunakan"},
	}
	first.Footer = fmt.Sprintf("Cek otomatis setiap hari • Notifikasi %d hari sebelum expire", b.HorizonDays)

	payloads := []Payload{first}

	for i, page := range pages[1:] {
		cont := newPayload(
			fmt.Sprintf("⚠️ Item Expire - Lanjutan (%d)", i+1),
			"Item lainnya yang akan expire:",
			ColorOrange,
			now,
		)
		cont.Fields = []Field{
			{Name: "📦 Daftar Item (Lanjutan)", Value: strings.Join(page, "\n\n")},
		}
		payloads = append(payloads, cont)
	}

	return payloads
}

// BuildExpiryReport renders expiring items for the interactive check
// command: one payload per page with inline per-item fields.
func (b *Batcher) BuildExpiryReport(now time.Time, items []models.Item) []Payload {
	if len(items) == 0 {
		return nil
	}

	chunks := chunkItems(items, b.PageSize)
	payloads := make([]Payload, 0, len(chunks))
	for i, page := range chunks {
		var p Payload
		if i == 0 {
			p = newPayload(
				"⚠️ Item yang Akan Expire",
				fmt.Sprintf("Ada %d item yang akan expire:", len(items)),
				ColorOrange,
				now,
			)
		} else {
			p = newPayload(
				fmt.Sprintf("⚠️ Item yang Akan Expire - Lanjutan (%d)", i),
				"",
				ColorOrange,
				now,
			)
		}
		for _, item := range page {
			severity := expiry.Classify(now, item)
			days := expiry.DaysRemaining(now, item.ExpireAt)
			status := remainingText(severity, days)
			if severity != models.SeverityExpired {
				status = severity.Marker() + " " + status
			} else {
				status = severity.Marker() + " EXPIRED"
			}
			p.Fields = append(p.Fields, Field{
				Name:   fmt.Sprintf("%d. %s (%s)", item.Seq, item.Name, item.Type),
				Value:  fmt.Sprintf("👥 %s\n⏰ %s", item.ParticipantList(), status),
				Inline: true,
			})
		}
		payloads = append(payloads, p)
	}

	return payloads
}

// BuildInventoryPages renders the full item set as numbered pages for the
// interactive listing command. Each page is an independent payload with a
// page-count header and per-item status markers.
func (b *Batcher) BuildInventoryPages(now time.Time, items []models.Item) []Payload {
	if len(items) == 0 {
		return nil
	}

	chunks := chunkItems(items, b.PageSize)
	total := len(chunks)

	payloads := make([]Payload, 0, total)
	for i, page := range chunks {
		p := newPayload(
			fmt.Sprintf("📋 Storage Clan - Halaman %d/%d", i+1, total),
			fmt.Sprintf("Total: %d item", len(items)),
			ColorBlue,
			now,
		)
		for _, item := range page {
			severity := expiry.Classify(now, item)
			days := expiry.DaysRemaining(now, item.ExpireAt)
			p.Fields = append(p.Fields, Field{
				Name:  fmt.Sprintf("%s %d. %s (%s)", severity.Marker(), item.Seq, item.Name, item.Type),
				Value: fmt.Sprintf("👥 %s\n⏰ %s", item.ParticipantList(), remainingText(severity, days)),
			})
		}
		payloads = append(payloads, p)
	}

	return payloads
}

// participantRoster collects the distinct participant names across all
// items, case-sensitive, sorted alphabetically for deterministic output.
func participantRoster(items []models.Item) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, name := range item.Participants {
			seen[name] = struct{}{}
		}
	}

	roster := make([]string, 0, len(seen))
	for name := range seen {
		roster = append(roster, name)
	}
	sort.Strings(roster)
	return roster
}

func itemSummary(now time.Time, item models.Item) string {
	severity := expiry.Classify(now, item)
	days := expiry.DaysRemaining(now, item.ExpireAt)
	return fmt.Sprintf("%s **%s** (%s)\n👥 %s | ⏰ %s",
		severity.Marker(), item.Name, item.Type, item.ParticipantList(), remainingText(severity, days))
}

func remainingText(severity models.Severity, days int) string {
	if severity == models.SeverityExpired {
		return "EXPIRED"
	}
	return fmt.Sprintf("%d hari lagi", days)
}

func chunk(lines []string, size int) [][]string {
	var pages [][]string
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	return pages
}

func chunkItems(items []models.Item, size int) [][]models.Item {
	var pages [][]models.Item
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[start:end])
	}
	return pages
}
