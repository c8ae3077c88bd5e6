package app

import (
	"github.com/google/uuid"

	"github.com/talkincode/prodcatalog/internal/domain"
)

// SeedProducts returns the fixture the catalog starts with. Ids are fixed so
// clients can link to the seed entries across restarts.
func SeedProducts() []domain.Product {
	yarn := domain.Product{
		ID:          uuid.MustParse("166e8b08-0c9e-44bc-95e2-d33b501b19d5"),
		Name:        "Organic Cotton Yarn",
		HsCode:      domain.StringPtr("520100"),
		ImageURL:    domain.StringPtr("https://example.com/images/yarn.jpg"),
		WeightKg:    domain.FloatPtr(0.05),
		RecycledPct: domain.FloatPtr(50),
		WastePct:    domain.FloatPtr(2),
		Location: &domain.Location{
			ID:          uuid.MustParse("c272ed68-84f7-405c-aab6-d7f3b2904b2b"),
			Name:        "Organic Cotton Supplier",
			Description: domain.StringPtr("Yarn supplier"),
			CountryCode: domain.StringPtr("IN"),
			Address:     domain.StringPtr("5678 Yarn Street, Coimbatore, TN"),
		},
		LifetimeAmount: domain.FloatPtr(5),
		Materials:      []domain.Product{},
	}

	beanie := domain.Product{
		ID:   uuid.MustParse("0a9f9b42-6b65-47b7-833b-cd3f8c6d64a0"),
		Name: "Organic Cotton Fine Knit Beanie",
		Description: domain.StringPtr("Made from 100% organic cotton with fine knit texture for added comfort. " +
			"Perfect for sustainable fashion choices."),
		HsCode:   domain.StringPtr("650500"),
		ImageURL: domain.StringPtr("https://beechfieldbrands.com/images/b51n.jpg"),
		Location: &domain.Location{
			ID:          uuid.MustParse("7a6cf93c-ccfb-464f-8970-3c9f8b03b758"),
			Name:        "Beechfield Brands Warehouse",
			Description: domain.StringPtr("Main storage and distribution center"),
			CountryCode: domain.StringPtr("UK"),
			Address:     domain.StringPtr("1234 Beanie Lane, Manchester, M1 2AB"),
		},
		WeightKg:       domain.FloatPtr(0.1),
		RecycledPct:    domain.FloatPtr(30),
		WastePct:       domain.FloatPtr(5),
		LifetimeAmount: domain.FloatPtr(2),
		Materials:      []domain.Product{yarn},
	}

	return []domain.Product{beanie}
}
