package extract

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// PageFetcher downloads a web page and reduces it to its visible text.
type PageFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewPageFetcher returns a fetcher whose client only connects to public
// unicast addresses. The check runs on the resolved address of every
// connection, redirects included.
func NewPageFetcher(maxBytes int64, timeout time.Duration) *PageFetcher {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: publicAddressOnly}
	return &PageFetcher{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		MaxBytes: maxBytes,
	}
}

var (
	ErrUnsupportedScheme = errors.New("only http and https urls can be fetched")
	ErrBlockedAddress    = errors.New("refusing to connect to a non-public address")
)

func publicAddressOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublic(ip) {
		return errors.Wrap(ErrBlockedAddress, address)
	}
	return nil
}

func isPublic(ip net.IP) bool {
	return ip.IsGlobalUnicast() && !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsLinkLocalUnicast()
}

type ErrNotOk int

func (e ErrNotOk) Error() string {
	return fmt.Sprintf("non-200 status code: %d", e)
}

func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	u, err := neturl.Parse(url)
	if err != nil {
		return "", errors.Wrapf(err, "parsing `%s`", url)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Wrapf(ErrUnsupportedScheme, "fetching `%s`", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "preparing request for `%s`", url)
	}
	req.Header.Set("User-Agent", "prodcatalog/1.0")

	rsp, err := f.Client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetching `%s`", url)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return "", ErrNotOk(rsp.StatusCode)
	}

	var body io.Reader = rsp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(rsp.Body, f.MaxBytes)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", errors.Wrap(err, "parsing HTML document")
	}
	doc.Find("script, style, noscript, svg").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if title != "" {
		text = title + "\n" + text
	}
	return text, nil
}
