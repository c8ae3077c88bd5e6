package domain

import "github.com/google/uuid"

// Product is a catalog item with trade and sustainability metadata. Materials
// form a bill-of-materials tree: every entry is owned by its parent and is
// never shared with another product.
type Product struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	HsCode         *string   `json:"hs_code"`
	ImageURL       *string   `json:"image_url"`
	Location       *Location `json:"location"`
	WeightKg       *float64  `json:"weight_kg"`
	RecycledPct    *float64  `json:"recycled_pct"`
	WastePct       *float64  `json:"waste_pct"`
	LifetimeAmount *float64  `json:"lifetime_amount"`
	Materials      []Product `json:"materials"`
}

// NewProduct returns a product with a freshly generated id and no materials.
func NewProduct(name string) Product {
	return Product{
		ID:        uuid.New(),
		Name:      name,
		Materials: []Product{},
	}
}

// Clone returns a deep copy; the copy shares no pointers or slices with p.
func (p *Product) Clone() Product {
	c := *p
	c.Description = cloneString(p.Description)
	c.HsCode = cloneString(p.HsCode)
	c.ImageURL = cloneString(p.ImageURL)
	c.WeightKg = cloneFloat(p.WeightKg)
	c.RecycledPct = cloneFloat(p.RecycledPct)
	c.WastePct = cloneFloat(p.WastePct)
	c.LifetimeAmount = cloneFloat(p.LifetimeAmount)
	if p.Location != nil {
		loc := p.Location.Clone()
		c.Location = &loc
	}
	c.Materials = make([]Product, len(p.Materials))
	for i := range p.Materials {
		c.Materials[i] = p.Materials[i].Clone()
	}
	return c
}

// Walk visits p and then every material depth-first, in order. depth is 0 for
// p itself. Returning false from fn stops the walk.
func (p *Product) Walk(fn func(item *Product, depth int) bool) bool {
	return p.walk(fn, 0)
}

func (p *Product) walk(fn func(item *Product, depth int) bool, depth int) bool {
	if !fn(p, depth) {
		return false
	}
	for i := range p.Materials {
		if !p.Materials[i].walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// IDs returns every identifier carried by the tree rooted at p: products,
// nested materials and their locations.
func (p *Product) IDs() []uuid.UUID {
	var ids []uuid.UUID
	p.Walk(func(item *Product, _ int) bool {
		ids = append(ids, item.ID)
		if item.Location != nil {
			ids = append(ids, item.Location.ID)
		}
		return true
	})
	return ids
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
