// Package fetcher retrieves archived switch configuration captures from
// FTP drop hosts, where collection scripts commonly upload tech-support
// output.
package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/model"
)

// maxDumpBytes caps how much of a remote capture is read into memory.
// Large full tech-support captures run tens of megabytes.
const maxDumpBytes = 128 << 20

// DumpFetcher downloads configuration captures over FTP.
type DumpFetcher struct {
	user     string
	password string
	timeout  time.Duration
}

// Options configures the fetcher. Empty credentials fall back to
// anonymous login.
type Options struct {
	User     string
	Password string
	Timeout  time.Duration
}

// New creates a DumpFetcher.
func New(opts Options) *DumpFetcher {
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &DumpFetcher{user: opts.User, password: opts.Password, timeout: opts.Timeout}
}

// splitFTPURL extracts host (with port) and path from an FTP URL.
func splitFTPURL(rawURL string) (host, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "fetcher: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("fetcher: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	if u.Path == "" {
		return "", "", eris.New("fetcher: empty path in ftp url")
	}
	return host, u.Path, nil
}

// Fetch downloads a capture and wraps it as a source document named after
// the remote file.
func (f *DumpFetcher) Fetch(ctx context.Context, ftpURL string) (*model.SourceDocument, error) {
	host, path, err := splitFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("fetcher: connecting",
		zap.String("host", host), zap.String("path", path))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: ftp dial")
	}
	defer conn.Quit()

	if err := conn.Login(f.user, f.password); err != nil {
		return nil, eris.Wrap(err, "fetcher: ftp login")
	}

	resp, err := conn.Retr(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: retrieve %s", path)
	}
	defer resp.Close()

	raw, err := io.ReadAll(io.LimitReader(resp, maxDumpBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read capture")
	}

	return &model.SourceDocument{Name: path, Text: string(raw)}, nil
}

// FetchToFile downloads a capture to a local file. Returns bytes written.
func (f *DumpFetcher) FetchToFile(ctx context.Context, ftpURL, localPath string) (int64, error) {
	doc, err := f.Fetch(ctx, ftpURL)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(localPath)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create file")
	}
	defer file.Close()

	n, err := io.Copy(file, strings.NewReader(doc.Text))
	if err != nil {
		return n, eris.Wrap(err, "fetcher: write file")
	}
	return n, nil
}
