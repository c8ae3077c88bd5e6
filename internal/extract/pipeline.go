package extract

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/talkincode/prodcatalog/internal/domain"
)

// Fetcher resolves a URL to page text for from_url prompts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Pipeline runs one extraction: optional document normalization, prompt
// construction, a single completion, and parsing. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	Completer  Completer
	Normalizer *Normalizer

	// Fetcher, when set, is used for from_url requests; the prompt then
	// carries the page text as well as the url.
	Fetcher Fetcher
}

func NewPipeline(completer Completer, normalizer *Normalizer) *Pipeline {
	if normalizer == nil {
		normalizer = &Normalizer{}
	}
	return &Pipeline{Completer: completer, Normalizer: normalizer}
}

func (p *Pipeline) FromURL(ctx context.Context, url string) (domain.Product, error) {
	if strings.TrimSpace(url) == "" {
		return domain.Product{}, &ValidationError{Field: "url", Message: "url is required"}
	}
	prompt := BuildPrompt(ModeFromURL, url)
	if p.Fetcher != nil {
		pageText, err := p.Fetcher.Fetch(ctx, url)
		if err != nil {
			zap.L().Warn("page fetch failed, sending url only",
				zap.String("url", url), zap.Error(err))
		} else if pageText != "" {
			prompt = withPageText(prompt, pageText)
		}
	}
	return p.run(ctx, ModeFromURL, prompt)
}

func (p *Pipeline) FromText(ctx context.Context, text string) (domain.Product, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Product{}, &ValidationError{Field: "large_text", Message: "large_text is required"}
	}
	return p.run(ctx, ModeFromText, BuildPrompt(ModeFromText, text))
}

// FromPDF extracts the document text and then proceeds as FromText. A
// document without any embedded text never reaches the completion service.
func (p *Pipeline) FromPDF(ctx context.Context, r io.Reader) (domain.Product, error) {
	text, err := p.Normalizer.ReadPDF(r)
	if err != nil {
		return domain.Product{}, err
	}
	if strings.TrimSpace(text) == "" {
		return domain.Product{}, &DocumentParseError{Reason: "no extractable text"}
	}
	return p.run(ctx, ModeFromText, BuildPrompt(ModeFromText, text))
}

func (p *Pipeline) run(ctx context.Context, mode Mode, prompt string) (domain.Product, error) {
	zap.L().Debug("extraction prompt",
		zap.Stringer("mode", mode),
		zap.String("prompt", prompt),
	)

	content, err := p.Completer.Complete(ctx, prompt)
	if err != nil {
		return domain.Product{}, err
	}
	zap.L().Debug("extraction response", zap.Stringer("mode", mode), zap.String("content", content))

	product, err := ParseProduct(content)
	if err != nil {
		return domain.Product{}, err
	}
	zap.L().Info("product extracted",
		zap.Stringer("mode", mode),
		zap.String("id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int("materials", len(product.Materials)),
	)
	return product, nil
}
