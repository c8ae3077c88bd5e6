package adminapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/prodcatalog/internal/catalog"
	"github.com/talkincode/prodcatalog/internal/domain"
	"github.com/talkincode/prodcatalog/internal/webserver"
)

// pdfFormField is the multipart field carrying the uploaded document.
const pdfFormField = "pdf_file"

type extractURLPayload struct {
	URL string `json:"url" validate:"required"`
}

type extractTextPayload struct {
	LargeText string `json:"large_text" validate:"required"`
}

func registerRootRoutes() {
	webserver.ApiGET("", helloWorld)
	webserver.ApiGET("/", helloWorld)
}

// registerProductRoutes registers catalog listing and extraction endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/stats", productStats)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products/extract/url", extractFromURL)
	webserver.ApiPOST("/products/extract/text", extractFromText)
	webserver.ApiPOST("/products/extract/pdf", extractFromPDF)
}

func helloWorld(c echo.Context) error {
	return ok(c, map[string]string{"message": "Hello World"})
}

// listProducts returns the whole catalog in insertion order
// @Success 200 {object} ListResponse
// @Router /api/products [get]
func listProducts(c echo.Context) error {
	products := GetAppContext(c).Catalog().List()
	return ok(c, ListResponse{Data: products, Total: len(products)})
}

// getProduct looks up a product or a nested material by id
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Router /api/products/{id} [get]
func getProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	p, found := GetAppContext(c).Catalog().Get(id)
	if !found {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	return ok(c, p)
}

func productStats(c echo.Context) error {
	summary, err := catalog.Summarize(GetAppContext(c).Catalog().List())
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, summary)
}

func exportProducts(c echo.Context) error {
	var buf bytes.Buffer
	if err := catalog.ExportCSV(&buf, GetAppContext(c).Catalog().List()); err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// extractFromURL asks the model to read a product page
// @Param body body extractURLPayload true "Product page url"
// @Success 200 {object} domain.Product
// @Router /api/products/extract/url [post]
func extractFromURL(c echo.Context) error {
	var payload extractURLPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse request body")
	}
	payload.URL = strings.TrimSpace(payload.URL)
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, validationDetail(err))
	}

	appCtx := GetAppContext(c)
	product, err := appCtx.Extractor().FromURL(c.Request().Context(), payload.URL)
	return appendExtracted(c, appCtx.Catalog(), "URL", product, err)
}

// extractFromText extracts a product from free text
// @Param body body extractTextPayload true "Product description"
// @Success 200 {object} domain.Product
// @Router /api/products/extract/text [post]
func extractFromText(c echo.Context) error {
	var payload extractTextPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse request body")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, validationDetail(err))
	}

	appCtx := GetAppContext(c)
	product, err := appCtx.Extractor().FromText(c.Request().Context(), payload.LargeText)
	return appendExtracted(c, appCtx.Catalog(), "text", product, err)
}

// extractFromPDF extracts a product from an uploaded PDF
// @Accept multipart/form-data
// @Param pdf_file formData file true "PDF document"
// @Success 200 {object} domain.Product
// @Router /api/products/extract/pdf [post]
func extractFromPDF(c echo.Context) error {
	fh, err := c.FormFile(pdfFormField)
	if err != nil {
		return fail(c, http.StatusBadRequest, pdfFormField+" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "Unable to read uploaded file")
	}
	defer f.Close()

	appCtx := GetAppContext(c)
	product, err := appCtx.Extractor().FromPDF(c.Request().Context(), f)
	return appendExtracted(c, appCtx.Catalog(), "PDF", product, err)
}

// appendExtracted finishes every extraction request: the catalog only
// changes when the whole pipeline succeeded.
func appendExtracted(c echo.Context, store *catalog.Store, source string, product domain.Product, err error) error {
	if err != nil {
		zap.L().Warn("extraction failed",
			zap.String("source", source),
			zap.Int("status", statusFor(err)),
			zap.Error(err))
		return failExtraction(c, source, err)
	}
	if err := store.Append(product); err != nil {
		zap.L().Error("append extracted product", zap.String("id", product.ID.String()), zap.Error(err))
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, product)
}
