package models

import (
	"strings"
	"time"

	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

// ItemType categorises stored clan items.
type ItemType string

const (
	ItemTypeUnique     ItemType = "UNIQUE"
	ItemTypeRed        ItemType = "RED"
	ItemTypeConsumable ItemType = "CONSUMABLE"
)

// ItemTypes lists every valid type in display order.
var ItemTypes = []ItemType{ItemTypeUnique, ItemTypeRed, ItemTypeConsumable}

// ParseItemType validates raw against the fixed type set, case-insensitively.
func ParseItemType(raw string) (ItemType, error) {
	candidate := ItemType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, t := range ItemTypes {
		if candidate == t {
			return t, nil
		}
	}
	return "", appErrors.New(appErrors.ErrInvalidItemType.Code, "item type must be one of UNIQUE, RED, CONSUMABLE")
}

// Item is a stored clan-storage record. Records are append-only: no update or
// delete path exists, so UpdatedAt always equals CreatedAt.
type Item struct {
	Seq          int       `db:"seq" json:"seq"`
	Name         string    `db:"name" json:"name"`
	Type         ItemType  `db:"type" json:"type"`
	Participants []string  `db:"-" json:"participants"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	ExpireAt     time.Time `db:"expire_at" json:"expire_at"`
}

// ParticipantList renders participants as the canonical comma-joined form
// used by the spreadsheet column and by Discord embeds.
func (i Item) ParticipantList() string {
	return strings.Join(i.Participants, ", ")
}

// NormalizeParticipants splits a raw comma-separated participant string into
// distinct, non-blank names. Order of first occurrence is preserved and
// matching is case-sensitive.
func NormalizeParticipants(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	names := make([]string, 0, len(parts))

	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// Severity is the coarse urgency bucket derived from days remaining. It is
// used purely for display emphasis.
type Severity int

const (
	SeverityExpired Severity = iota
	SeverityCritical
	SeverityWarning
	SeveritySafe
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityExpired:
		return "EXPIRED"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	default:
		return "SAFE"
	}
}

// Marker returns the emoji used next to item names in embeds.
func (s Severity) Marker() string {
	switch s {
	case SeverityExpired, SeverityCritical:
		return "🔴"
	case SeverityWarning:
		return "🟡"
	default:
		return "🟢"
	}
}
