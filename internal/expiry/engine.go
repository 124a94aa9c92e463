// Package expiry holds the pure expiration logic: computing expiry
// timestamps, classifying items by days remaining, and selecting the records
// that fall inside the notification horizon.
package expiry

import (
	"math"
	"sort"
	"time"

	"github.com/pradiptars/clan-storage-bot/internal/models"
)

// DefaultRetentionDays is how long an item lives after creation.
const DefaultRetentionDays = 30

// DefaultHorizonDays is the lookahead window for notifications.
const DefaultHorizonDays = 7

// ComputeExpireAt derives the expiry timestamp from the creation timestamp.
// Expiry is always exactly createdAt + retention; it is never stored in a way
// that could drift from this.
func ComputeExpireAt(createdAt time.Time, retentionDays int) time.Time {
	return createdAt.Add(time.Duration(retentionDays) * 24 * time.Hour)
}

// DaysRemaining returns the whole days between now and expireAt, rounded
// toward negative infinity. An item expiring later today reports 0.
func DaysRemaining(now, expireAt time.Time) int {
	return int(math.Floor(expireAt.Sub(now).Hours() / 24))
}

// Classify buckets an item into a severity tier. The boundary at exactly
// zero days remaining is EXPIRED, not CRITICAL.
func Classify(now time.Time, item models.Item) models.Severity {
	days := DaysRemaining(now, item.ExpireAt)
	switch {
	case days <= 0:
		return models.SeverityExpired
	case days <= 3:
		return models.SeverityCritical
	case days <= 7:
		return models.SeverityWarning
	default:
		return models.SeveritySafe
	}
}

// SelectExpiring returns the items whose expiry falls on or before
// now + horizonDays, sorted ascending by expiry so the most urgent items
// surface first.
func SelectExpiring(now time.Time, items []models.Item, horizonDays int) []models.Item {
	deadline := now.Add(time.Duration(horizonDays) * 24 * time.Hour)

	var expiring []models.Item
	for _, item := range items {
		if !item.ExpireAt.After(deadline) {
			expiring = append(expiring, item)
		}
	}

	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].ExpireAt.Before(expiring[j].ExpireAt)
	})

	return expiring
}
