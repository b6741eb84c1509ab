package shopping

import (
	"hash/fnv"
	"math"
	"sort"
)

// Store is a grocery in the simulated catalogue
type Store struct {
	ID          string
	Name        string
	PriceFactor float64
}

// Stores is the fixed simulated catalogue.
var Stores = []Store{
	{ID: "fresh-market", Name: "Fresh Market", PriceFactor: 1.15},
	{ID: "value-grocer", Name: "Value Grocer", PriceFactor: 0.90},
	{ID: "corner-shop", Name: "Corner Shop", PriceFactor: 1.30},
	{ID: "farmers-coop", Name: "Farmers Co-op", PriceFactor: 1.05},
}

// Offer is a simulated price quote for one item at one store
type Offer struct {
	StoreID    string
	Store      string
	Item       string
	PriceCents int
	InStock    bool
}

// Quote returns a deterministic offer per store for the item, cheapest
// in-stock offers first.
func Quote(item string) []Offer {
	h := fnv.New64a()
	h.Write([]byte(NormalizeName(item)))
	seed := h.Sum64()

	base := 99 + float64(seed%700)
	offers := make([]Offer, len(Stores))
	for i, s := range Stores {
		jitter := float64((seed >> (8 + uint(i)*4)) % 50)
		offers[i] = Offer{
			StoreID:    s.ID,
			Store:      s.Name,
			Item:       item,
			PriceCents: int(math.Round(base*s.PriceFactor + jitter)),
			InStock:    (seed>>(24+uint(i)*5))%7 != 0,
		}
	}
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].InStock != offers[j].InStock {
			return offers[i].InStock
		}
		return offers[i].PriceCents < offers[j].PriceCents
	})
	return offers
}

// Offers quotes every remaining item on the list, grouped by item in list
// order.
func (l *List) Offers() []Offer {
	var out []Offer
	for _, it := range l.Remaining() {
		out = append(out, Quote(it.Name)...)
	}
	return out
}
