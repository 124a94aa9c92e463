// Package repository implements the item storage adapters: Google Sheets as
// the primary backend, SQLite as the local fallback, and a wrapper that picks
// between them behind a connectivity check.
package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pradiptars/clan-storage-bot/internal/models"
)

// TimestampLayout is the wire format for all stored timestamps, shared by
// the spreadsheet columns and the SQLite text columns.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the fixed spreadsheet column order.
var Header = []string{"No", "Nama Item", "Type", "Participant", "CreatedAt", "UpdateAt", "Expire"}

// ItemStore is the narrow storage contract the rest of the bot consumes.
// Callers never learn which backend answered.
type ItemStore interface {
	// AddItem appends a record. Records are never mutated or deleted.
	AddItem(ctx context.Context, item models.Item) error
	// ListItems returns every stored record.
	ListItems(ctx context.Context) ([]models.Item, error)
	// ListExpiring returns records whose expiry is on or before deadline.
	ListExpiring(ctx context.Context, deadline time.Time) ([]models.Item, error)
	// NextSeq allocates the next sequence number: max existing + 1, or 1 on
	// an empty store. Not safe for concurrent writers.
	NextSeq(ctx context.Context) (int, error)
	// Connected reports whether the backend is currently reachable.
	Connected() bool
}

// itemToRow renders an item in the fixed column order.
func itemToRow(item models.Item) []interface{} {
	return []interface{}{
		item.Seq,
		item.Name,
		string(item.Type),
		item.ParticipantList(),
		item.CreatedAt.Format(TimestampLayout),
		item.UpdatedAt.Format(TimestampLayout),
		item.ExpireAt.Format(TimestampLayout),
	}
}

// rowToItem parses a spreadsheet row. Rows with an unparseable sequence
// number or timestamps are reported as errors; the caller decides whether to
// skip or fail.
func rowToItem(row []interface{}, loc *time.Location) (models.Item, error) {
	if len(row) < len(Header) {
		return models.Item{}, fmt.Errorf("row has %d columns, want %d", len(row), len(Header))
	}

	seq, err := strconv.Atoi(cellString(row[0]))
	if err != nil {
		return models.Item{}, fmt.Errorf("parse sequence number: %w", err)
	}

	createdAt, err := time.ParseInLocation(TimestampLayout, cellString(row[4]), loc)
	if err != nil {
		return models.Item{}, fmt.Errorf("parse created timestamp: %w", err)
	}
	updatedAt, err := time.ParseInLocation(TimestampLayout, cellString(row[5]), loc)
	if err != nil {
		return models.Item{}, fmt.Errorf("parse updated timestamp: %w", err)
	}
	expireAt, err := time.ParseInLocation(TimestampLayout, cellString(row[6]), loc)
	if err != nil {
		return models.Item{}, fmt.Errorf("parse expire timestamp: %w", err)
	}

	return models.Item{
		Seq:          seq,
		Name:         cellString(row[1]),
		Type:         models.ItemType(cellString(row[2])),
		Participants: models.NormalizeParticipants(cellString(row[3])),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		ExpireAt:     expireAt,
	}, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
