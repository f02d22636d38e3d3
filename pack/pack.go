// Package pack defines the purchasable credit pack catalog.
//
// Packs are one-time purchases that top up a session's bonus credit
// balance. The catalog is fixed at build time; payment itself happens
// outside this library, and Apply is called only after the caller's
// payment provider confirms the charge.
package pack

import (
	"context"
	"fmt"

	"github.com/clipforge/credits"
	"github.com/clipforge/credits/id"
	"github.com/clipforge/credits/types"
)

// Pack is one purchasable credit bundle.
type Pack struct {
	Slug    string
	Name    string
	Credits int
	Price   types.Money

	// Savings is a display badge, empty for the baseline pack.
	Savings string
}

// PerCredit returns the effective price of a single credit in this pack.
func (p Pack) PerCredit() types.Money {
	return p.Price.Divide(int64(p.Credits))
}

var catalog = []Pack{
	{Slug: "starter-boost", Name: "Starter Boost", Credits: 5, Price: types.USD(499)},
	{Slug: "creator-pack", Name: "Creator Pack", Credits: 10, Price: types.USD(899), Savings: "SAVE 10%"},
	{Slug: "power-surge", Name: "Power Surge", Credits: 15, Price: types.USD(1299), Savings: "SAVE 15%"},
}

// Catalog returns all purchasable packs, cheapest first.
func Catalog() []Pack {
	out := make([]Pack, len(catalog))
	copy(out, catalog)
	return out
}

// BySlug looks up a pack by its catalog slug.
func BySlug(slug string) (Pack, error) {
	for _, p := range catalog {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Pack{}, fmt.Errorf("%w: %q", credits.ErrPackNotFound, slug)
}

// BonusAdder is the slice of the engine a purchase needs.
type BonusAdder interface {
	AddBonus(ctx context.Context, amount int) error
}

// Purchase is the receipt for an applied pack.
type Purchase struct {
	types.Entity
	ID      id.ID
	Slug    string
	Credits int
	Price   types.Money
}

// Apply credits a confirmed pack purchase to the session and returns
// the receipt.
func Apply(ctx context.Context, engine BonusAdder, p Pack) (*Purchase, error) {
	if err := engine.AddBonus(ctx, p.Credits); err != nil {
		return nil, err
	}

	return &Purchase{
		Entity:  types.NewEntity(),
		ID:      id.New(id.PrefixPack),
		Slug:    p.Slug,
		Credits: p.Credits,
		Price:   p.Price,
	}, nil
}
