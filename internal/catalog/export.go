package catalog

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"

	"github.com/talkincode/prodcatalog/internal/domain"
)

type productRow struct {
	ID             string `csv:"id"`
	Name           string `csv:"name"`
	HsCode         string `csv:"hs_code"`
	WeightKg       string `csv:"weight_kg"`
	RecycledPct    string `csv:"recycled_pct"`
	WastePct       string `csv:"waste_pct"`
	LifetimeAmount string `csv:"lifetime_amount"`
	Location       string `csv:"location"`
	CountryCode    string `csv:"country_code"`
	Materials      int    `csv:"materials"`
}

// ExportCSV writes one row per top-level product. Unset fields are empty
// cells; materials is the number of direct materials.
func ExportCSV(w io.Writer, products []domain.Product) error {
	rows := make([]*productRow, 0, len(products))
	for i := range products {
		p := &products[i]
		row := &productRow{
			ID:             p.ID.String(),
			Name:           p.Name,
			HsCode:         deref(p.HsCode),
			WeightKg:       formatFloat(p.WeightKg),
			RecycledPct:    formatFloat(p.RecycledPct),
			WastePct:       formatFloat(p.WastePct),
			LifetimeAmount: formatFloat(p.LifetimeAmount),
			Materials:      len(p.Materials),
		}
		if p.Location != nil {
			row.Location = p.Location.Name
			row.CountryCode = deref(p.Location.CountryCode)
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(&rows, w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return cast.ToString(*f)
}
