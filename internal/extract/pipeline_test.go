package extract

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/prodcatalog/internal/extract/pdftest"
)

type stubCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type stubFetcher struct {
	text string
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) (string, error) { return s.text, s.err }

func TestPipelineFromText(t *testing.T) {
	completer := &stubCompleter{reply: `{"name": "Wool Socks", "materials": [{"name": "Merino wool"}]}`}
	p := NewPipeline(completer, nil)

	product, err := p.FromText(context.Background(), "Wool socks made from merino wool")
	require.NoError(t, err)
	assert.Equal(t, "Wool Socks", product.Name)
	require.Len(t, product.Materials, 1)

	require.Equal(t, 1, completer.calls())
	assert.Contains(t, completer.prompts[0], "Wool socks made from merino wool")
	assert.Contains(t, completer.prompts[0], "If there is url inside provided text")
}

func TestPipelineFromURL(t *testing.T) {
	completer := &stubCompleter{reply: `{"name": "Desk"}`}
	p := NewPipeline(completer, nil)

	_, err := p.FromURL(context.Background(), "https://shop.example/desk")
	require.NoError(t, err)
	assert.Contains(t, completer.prompts[0], "https://shop.example/desk")
	assert.NotContains(t, completer.prompts[0], "text content of the page")

	p.Fetcher = stubFetcher{text: "Standing desk, bamboo top"}
	_, err = p.FromURL(context.Background(), "https://shop.example/desk")
	require.NoError(t, err)
	assert.Contains(t, completer.prompts[1], "Standing desk, bamboo top")

	p.Fetcher = stubFetcher{err: ErrNotOk(http.StatusNotFound)}
	_, err = p.FromURL(context.Background(), "https://shop.example/desk")
	require.NoError(t, err)
	assert.NotContains(t, completer.prompts[2], "text content of the page")
}

func TestPipelineValidation(t *testing.T) {
	completer := &stubCompleter{}
	p := NewPipeline(completer, nil)

	_, err := p.FromURL(context.Background(), "  ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "url", verr.Field)

	_, err = p.FromText(context.Background(), "")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "large_text", verr.Field)

	assert.Equal(t, 0, completer.calls())
}

func TestPipelineFromPDF(t *testing.T) {
	completer := &stubCompleter{reply: `{"name": "Oak Chair"}`}
	p := NewPipeline(completer, &Normalizer{MaxBytes: 1 << 20})

	product, err := p.FromPDF(context.Background(), bytes.NewReader(pdftest.Build(pdftest.TextPage("Oak chair, 4.5 kg"))))
	require.NoError(t, err)
	assert.Equal(t, "Oak Chair", product.Name)
	assert.Contains(t, completer.prompts[0], "Oak chair, 4.5 kg")
}

func TestPipelineFromPDFWithoutText(t *testing.T) {
	completer := &stubCompleter{reply: `{"name": "unused"}`}
	p := NewPipeline(completer, nil)

	_, err := p.FromPDF(context.Background(), bytes.NewReader(pdftest.Build(pdftest.BlankPage)))
	var derr *DocumentParseError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Error(), "no extractable text")
	assert.Equal(t, 0, completer.calls())
}

func TestPipelinePropagatesStageErrors(t *testing.T) {
	upstream := &UpstreamError{StatusCode: 502, Err: errors.New("bad gateway")}
	p := NewPipeline(&stubCompleter{err: upstream}, nil)
	_, err := p.FromText(context.Background(), "anything")
	assert.Same(t, upstream, err)

	p = NewPipeline(&stubCompleter{reply: "Sorry, I cannot help with that."}, nil)
	_, err = p.FromText(context.Background(), "anything")
	var perr *ExtractionParseError
	assert.True(t, errors.As(err, &perr))
}

func TestPageFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lamp" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Desk Lamp</title><style>body{}</style></head>
<body><h1>Desk   Lamp</h1>
<script>var x = 1;</script>
<p>Aluminium body, 1.2 kg</p></body></html>`))
	}))
	defer srv.Close()

	f := NewPageFetcher(1<<20, 5*time.Second)
	f.Client = srv.Client()
	text, err := f.Fetch(context.Background(), srv.URL+"/lamp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Desk Lamp\n"), text)
	assert.Contains(t, text, "Desk Lamp Aluminium body, 1.2 kg")
	assert.NotContains(t, text, "var x")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	var notOk ErrNotOk
	require.True(t, errors.As(err, &notOk))
	assert.Equal(t, ErrNotOk(http.StatusNotFound), notOk)
}

func TestPageFetcherRefusesInternalTargets(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>internal</body></html>"))
	}))
	defer srv.Close()

	f := NewPageFetcher(1<<20, 5*time.Second)

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrBlockedAddress), "got %v", err)
	_, err = f.Fetch(context.Background(), "http://169.254.169.254/latest/meta-data/")
	assert.True(t, errors.Is(err, ErrBlockedAddress), "got %v", err)
	assert.Equal(t, int32(0), hits.Load())

	for _, url := range []string{"file:///etc/passwd", "ftp://shop.example/lamp", "shop.example/lamp"} {
		_, err = f.Fetch(context.Background(), url)
		assert.True(t, errors.Is(err, ErrUnsupportedScheme), "%s: got %v", url, err)
	}
}

func TestIsPublic(t *testing.T) {
	for addr, want := range map[string]bool{
		"93.184.216.34":   true,
		"2606:4700::1111": true,
		"127.0.0.1":       false,
		"10.1.2.3":        false,
		"192.168.0.10":    false,
		"169.254.169.254": false,
		"0.0.0.0":         false,
		"::1":             false,
		"fe80::1":         false,
		"fd00::1":         false,
	} {
		assert.Equal(t, want, isPublic(net.ParseIP(addr)), addr)
	}
}
