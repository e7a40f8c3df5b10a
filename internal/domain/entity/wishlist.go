package entity

import "fmt"

// StoredCoin is a watched coin enriched with user-entered holdings and the
// value derived from them. Holdings stays a raw string so the user's input
// survives an edit round-trip (e.g. "0.0500"). Value is nil when the price
// is unknown or the holdings text is not numeric.
type StoredCoin struct {
	MarketCoin
	Holdings string   `json:"holdings"`
	Value    *float64 `json:"value"`
	Resolved bool     `json:"resolved"`
}

// WishlistState is the normalized wishlist: insertion-ordered unique ids
// plus a mapping from id to entity. A nil entity means the id is watched
// but its market data has not arrived yet.
type WishlistState struct {
	IDs      []string               `json:"ids"`
	Entities map[string]*StoredCoin `json:"entities"`
}

// NewWishlistState returns an empty state with a non-nil entity map.
func NewWishlistState() WishlistState {
	return WishlistState{
		IDs:      []string{},
		Entities: make(map[string]*StoredCoin),
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the store's internal state to mutation.
func (s WishlistState) Clone() WishlistState {
	out := WishlistState{
		IDs:      make([]string, len(s.IDs)),
		Entities: make(map[string]*StoredCoin, len(s.Entities)),
	}
	copy(out.IDs, s.IDs)
	for id, coin := range s.Entities {
		if coin == nil {
			out.Entities[id] = nil
			continue
		}
		c := *coin
		if coin.Value != nil {
			v := *coin.Value
			c.Value = &v
		}
		if coin.CurrentPrice != nil {
			p := *coin.CurrentPrice
			c.CurrentPrice = &p
		}
		if coin.PriceChangePercentage24h != nil {
			pc := *coin.PriceChangePercentage24h
			c.PriceChangePercentage24h = &pc
		}
		if coin.MarketCapRank != nil {
			r := *coin.MarketCapRank
			c.MarketCapRank = &r
		}
		if coin.Sparkline7d.Price != nil {
			c.Sparkline7d.Price = append([]float64(nil), coin.Sparkline7d.Price...)
		}
		out.Entities[id] = &c
	}
	return out
}

// Validate checks the structural invariants: the ordered id list and the
// entity map hold exactly the same key set, and no id repeats.
func (s WishlistState) Validate() error {
	seen := make(map[string]struct{}, len(s.IDs))
	for _, id := range s.IDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("wishlist state: duplicate id %q in order", id)
		}
		seen[id] = struct{}{}
		if _, ok := s.Entities[id]; !ok {
			return fmt.Errorf("wishlist state: id %q in order but missing from entities", id)
		}
	}
	if len(seen) != len(s.Entities) {
		for id := range s.Entities {
			if _, ok := seen[id]; !ok {
				return fmt.Errorf("wishlist state: id %q in entities but missing from order", id)
			}
		}
	}
	return nil
}
