package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AllocationSlice is one entry of the portfolio allocation breakdown.
type AllocationSlice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// PortfolioTotal sums the derived values of all entities. Entities with a
// nil, zero or negative value are excluded.
func PortfolioTotal(s WishlistState) float64 {
	var total float64
	for _, coin := range s.Entities {
		if coin == nil || coin.Value == nil {
			continue
		}
		if v := *coin.Value; v > 0 {
			total += v
		}
	}
	return total
}

// AllocationSlices builds the allocation breakdown for the same filtered
// entity set PortfolioTotal uses, in watch order. Percentages are rounded
// to one decimal place. A zero total yields an empty slice rather than a
// division by zero.
func AllocationSlices(s WishlistState) []AllocationSlice {
	total := PortfolioTotal(s)
	if total <= 0 {
		return []AllocationSlice{}
	}
	slices := make([]AllocationSlice, 0, len(s.IDs))
	for _, id := range s.IDs {
		coin := s.Entities[id]
		if coin == nil || coin.Value == nil || *coin.Value <= 0 {
			continue
		}
		label := coin.Name
		if label == "" {
			label = coin.ID
		}
		if label == "" {
			label = id
		}
		label = fmt.Sprintf("%s (%s)", label, strings.ToUpper(coin.Symbol))
		slices = append(slices, AllocationSlice{
			Label:   label,
			Value:   *coin.Value,
			Percent: math.Round(*coin.Value/total*1000) / 10,
		})
	}
	return slices
}

// LastUpdatedAt returns the most recent parseable last-updated timestamp
// across all entities, or nil when none is available.
func LastUpdatedAt(s WishlistState) *time.Time {
	var latest *time.Time
	for _, coin := range s.Entities {
		if coin == nil || coin.LastUpdated == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, coin.LastUpdated)
		if err != nil {
			continue
		}
		if latest == nil || ts.After(*latest) {
			t := ts
			latest = &t
		}
	}
	return latest
}

// LastUpdatedDisplay formats the most recent update as a local time-of-day
// string, or "" when no entity carries a timestamp.
func LastUpdatedDisplay(s WishlistState) string {
	ts := LastUpdatedAt(s)
	if ts == nil {
		return ""
	}
	return ts.Local().Format("15:04:05")
}
