package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lvillar/rollcall"
)

// DefaultTimeout bounds remote fetches when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxDownload bounds remote sources in bytes. Larger bodies are an error.
var maxDownload int64 = 32 << 20

var errDownloadTooLarge = errors.New("download too large")

// PublishedCSV loads the CSV export of a spreadsheet published to the web.
// No credentials are sent; the sheet must be readable by anyone with the
// link.
type PublishedCSV struct {
	URL       string
	Delimiter rune
	Timeout   time.Duration
	Client    *http.Client // nil uses http.DefaultClient
}

// SheetExportURL returns the CSV export URL of a Google spreadsheet. gid
// selects a worksheet; empty exports the first one.
func SheetExportURL(sheetID, gid string) string {
	u := url.URL{
		Scheme: "https",
		Host:   "docs.google.com",
		Path:   "/spreadsheets/d/" + sheetID + "/export",
	}
	q := url.Values{"format": {"csv"}}
	if gid != "" {
		q.Set("gid", gid)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Load fetches and parses the export.
func (p *PublishedCSV) Load(ctx context.Context) (rollcall.Table, error) {
	body, err := fetch(ctx, p.Client, p.URL, p.Timeout)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindHTTP, Location: p.URL, Err: err}
	}
	t, err := readCSV(body, p.Delimiter)
	_ = body.Close()
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindHTTP, Location: p.URL, Err: err}
	}
	return t, nil
}

// limitedBody reads a response body of at most max bytes and fails on a
// longer one instead of truncating it.
type limitedBody struct {
	r      io.Reader // body limited to max+1 bytes
	read   int64
	max    int64
	body   io.Closer
	cancel context.CancelFunc
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.read > b.max {
		return 0, b.tooLarge()
	}
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.max {
		return n - int(b.read-b.max), b.tooLarge()
	}
	return n, err
}

func (b *limitedBody) tooLarge() error {
	return fmt.Errorf("%w: more than %d bytes", errDownloadTooLarge, b.max)
}

func (b *limitedBody) Close() error {
	defer b.cancel()
	return b.body.Close()
}

// fetch issues a GET and returns the body of a 2xx response.
func fetch(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("User-Agent", "rollcall")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	slog.Debug("source fetched", "url", rawURL, "status", resp.StatusCode, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return &limitedBody{
		r:      io.LimitReader(resp.Body, maxDownload+1),
		max:    maxDownload,
		body:   resp.Body,
		cancel: cancel,
	}, nil
}
