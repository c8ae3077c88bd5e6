package app

import (
	"context"
	"io"

	"github.com/talkincode/prodcatalog/config"
	"github.com/talkincode/prodcatalog/internal/catalog"
	"github.com/talkincode/prodcatalog/internal/domain"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// CatalogProvider provides the in-memory product catalog
type CatalogProvider interface {
	Catalog() *catalog.Store
}

// Extractor turns unstructured input into a product. Implementations do not
// touch the catalog.
type Extractor interface {
	FromURL(ctx context.Context, url string) (domain.Product, error)
	FromText(ctx context.Context, text string) (domain.Product, error)
	FromPDF(ctx context.Context, r io.Reader) (domain.Product, error)
}

// ExtractorProvider provides the extraction pipeline
type ExtractorProvider interface {
	Extractor() Extractor
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	CatalogProvider
	ExtractorProvider
}
