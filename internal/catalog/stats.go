package catalog

import (
	"github.com/montanaflynn/stats"

	"github.com/talkincode/prodcatalog/internal/domain"
)

// FieldSummary aggregates one numeric attribute over the products that set it.
type FieldSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type Summary struct {
	Total          int           `json:"total"`
	Materials      int           `json:"materials"`
	WeightKg       *FieldSummary `json:"weight_kg"`
	RecycledPct    *FieldSummary `json:"recycled_pct"`
	WastePct       *FieldSummary `json:"waste_pct"`
	LifetimeAmount *FieldSummary `json:"lifetime_amount"`
}

// Summarize computes catalog statistics over top-level products. Materials
// counts nested materials at every depth. A field summary is nil when no
// product sets that field.
func Summarize(products []domain.Product) (Summary, error) {
	sum := Summary{Total: len(products)}
	var weight, recycled, waste, lifetime stats.Float64Data
	for i := range products {
		p := &products[i]
		p.Walk(func(_ *domain.Product, depth int) bool {
			if depth > 0 {
				sum.Materials++
			}
			return true
		})
		weight = appendSet(weight, p.WeightKg)
		recycled = appendSet(recycled, p.RecycledPct)
		waste = appendSet(waste, p.WastePct)
		lifetime = appendSet(lifetime, p.LifetimeAmount)
	}

	var err error
	if sum.WeightKg, err = summarize(weight); err != nil {
		return Summary{}, err
	}
	if sum.RecycledPct, err = summarize(recycled); err != nil {
		return Summary{}, err
	}
	if sum.WastePct, err = summarize(waste); err != nil {
		return Summary{}, err
	}
	if sum.LifetimeAmount, err = summarize(lifetime); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func appendSet(data stats.Float64Data, v *float64) stats.Float64Data {
	if v == nil {
		return data
	}
	return append(data, *v)
}

func summarize(data stats.Float64Data) (*FieldSummary, error) {
	if data.Len() == 0 {
		return nil, nil
	}
	mean, err := data.Mean()
	if err != nil {
		return nil, err
	}
	median, err := data.Median()
	if err != nil {
		return nil, err
	}
	min, err := data.Min()
	if err != nil {
		return nil, err
	}
	max, err := data.Max()
	if err != nil {
		return nil, err
	}
	return &FieldSummary{Count: data.Len(), Mean: mean, Median: median, Min: min, Max: max}, nil
}
