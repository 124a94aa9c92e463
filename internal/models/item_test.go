package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

func TestParseItemType(t *testing.T) {
	tests := []struct {
		raw  string
		want ItemType
	}{
		{"UNIQUE", ItemTypeUnique},
		{"unique", ItemTypeUnique},
		{" Red ", ItemTypeRed},
		{"consumable", ItemTypeConsumable},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseItemType(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseItemTypeInvalid(t *testing.T) {
	for _, raw := range []string{"", "LEGENDARY", "uniq", "RED CONSUMABLE"} {
		_, err := ParseItemType(raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidItemType))
	}
}

func TestNormalizeParticipants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "trims and drops blanks",
			raw:  " Alice , Bob ,, Charlie ,",
			want: []string{"Alice", "Bob", "Charlie"},
		},
		{
			name: "dedupes preserving first occurrence",
			raw:  "Alice,Bob,Alice,Charlie,Bob",
			want: []string{"Alice", "Bob", "Charlie"},
		},
		{
			name: "case sensitive matching",
			raw:  "alice,Alice",
			want: []string{"alice", "Alice"},
		},
		{
			name: "single name",
			raw:  "Alice",
			want: []string{"Alice"},
		},
		{
			name: "all blank",
			raw:  " , ,",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeParticipants(tt.raw))
		})
	}
}

func TestParticipantList(t *testing.T) {
	item := Item{Participants: []string{"Alice", "Bob"}}
	assert.Equal(t, "Alice, Bob", item.ParticipantList())

	empty := Item{}
	assert.Equal(t, "", empty.ParticipantList())
}

func TestSeverityMarker(t *testing.T) {
	assert.Equal(t, "🔴", SeverityExpired.Marker())
	assert.Equal(t, "🔴", SeverityCritical.Marker())
	assert.Equal(t, "🟡", SeverityWarning.Marker())
	assert.Equal(t, "🟢", SeveritySafe.Marker())
}
