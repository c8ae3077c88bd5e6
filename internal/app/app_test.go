package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/prodcatalog/config"
	"github.com/talkincode/prodcatalog/internal/extract"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Logger.FileEnable = false
	return cfg
}

func TestApplicationInit(t *testing.T) {
	cfg := testConfig(t)
	a := NewApplication(cfg)
	require.NoError(t, a.Init(cfg))
	defer a.Release()

	assert.Same(t, cfg, a.Config())
	require.NotNil(t, a.Catalog())
	assert.Equal(t, 1, a.Catalog().Len())

	pipeline, ok := a.Extractor().(*extract.Pipeline)
	require.True(t, ok)
	assert.Nil(t, pipeline.Fetcher)
	assert.Equal(t, cfg.Web.MaxUploadBytes, pipeline.Normalizer.MaxBytes)
}

func TestNewPipelineWithFetcher(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extract.FetchURL = true

	pipeline := NewPipeline(cfg)
	fetcher, ok := pipeline.Fetcher.(*extract.PageFetcher)
	require.True(t, ok)
	assert.Equal(t, cfg.Extract.FetchMaxBytes, fetcher.MaxBytes)
}

func TestSeedProducts(t *testing.T) {
	seed := SeedProducts()
	require.Len(t, seed, 1)

	beanie := seed[0]
	assert.Equal(t, uuid.MustParse("0a9f9b42-6b65-47b7-833b-cd3f8c6d64a0"), beanie.ID)
	assert.Equal(t, "Organic Cotton Fine Knit Beanie", beanie.Name)
	require.Len(t, beanie.Materials, 1)
	assert.Equal(t, "Organic Cotton Yarn", beanie.Materials[0].Name)

	ids := beanie.IDs()
	assert.Len(t, ids, 4)
	unique := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, 4)

	// each call hands out an independent tree
	other := SeedProducts()
	other[0].Materials[0].Name = "changed"
	assert.Equal(t, "Organic Cotton Yarn", seed[0].Materials[0].Name)
}
