package model

import "companion-marketplace/internal/domain"

type PlanName string

const (
	PlanFree     PlanName = "FREE"
	PlanStandard PlanName = "STANDARD"
	PlanPremium  PlanName = "PREMIUM"
)

// Currency is the single settlement currency of the marketplace.
const Currency = "BDT"

// Plan is one entitlement tier: what it costs, how many concurrent
// connections it allows, and how long a purchase stays valid.
type Plan struct {
	Name           PlanName
	Price          int64 // minor units, 0 for the free tier
	AllowedMatches int
	DurationDays   int
}

// Payable reports whether the plan can be bought through the gateway.
func (p Plan) Payable() bool { return p.Price > 0 }

// Catalog is the read-only plan table. Amounts presented by clients or the
// gateway are only ever validated against it, never trusted.
type Catalog struct {
	plans map[PlanName]Plan
	order []PlanName
}

func DefaultCatalog() *Catalog {
	c := &Catalog{plans: map[PlanName]Plan{}}
	for _, p := range []Plan{
		{Name: PlanFree, Price: 0, AllowedMatches: 3, DurationDays: 365},
		{Name: PlanStandard, Price: 499, AllowedMatches: 12, DurationDays: 365},
		{Name: PlanPremium, Price: 799, AllowedMatches: 25, DurationDays: 365},
	} {
		c.plans[p.Name] = p
		c.order = append(c.order, p.Name)
	}
	return c
}

// Plan returns the catalog entry for name.
func (c *Catalog) Plan(name PlanName) (Plan, error) {
	p, ok := c.plans[name]
	if !ok {
		return Plan{}, domain.ErrUnknownPlan
	}
	return p, nil
}

// List returns all plans in declaration order.
func (c *Catalog) List() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.plans[n])
	}
	return out
}
