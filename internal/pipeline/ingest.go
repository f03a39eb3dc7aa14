package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// ErrScratchMissing is returned when a transport reported success but left no file behind.
var ErrScratchMissing = errors.New("downloaded file not found in scratch space")

// Transport copies a remote monthly file to a local path.
type Transport interface {
	Fetch(ctx context.Context, rawURL, dest string) error
}

// ------------------- HTTP -------------------

// HTTPTransport downloads over http(s). Any non-2xx status is a failure.
type HTTPTransport struct {
	Client *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{Timeout: timeout}}
}

func (t *HTTPTransport) Fetch(ctx context.Context, rawURL, dest string) error {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}

	return writeFile(dest, resp.Body)
}

// ------------------- S3 -------------------

// S3Transport downloads s3://bucket/key objects.
type S3Transport struct {
	Downloader s3manageriface.DownloaderAPI
}

// NewS3Transport creates a transport using the default AWS credential chain.
func NewS3Transport(region string) (*S3Transport, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Transport{Downloader: s3manager.NewDownloader(sess)}, nil
}

func (t *S3Transport) Fetch(ctx context.Context, rawURL, dest string) error {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	_, err = t.Downloader.DownloadWithContext(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URL %q: %w", rawURL, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: want s3://bucket/key", rawURL)
	}
	return bucket, key, nil
}

// ------------------- Routing -------------------

// SchemeTransport picks a transport by URL scheme.
type SchemeTransport map[string]Transport

func (t SchemeTransport) Fetch(ctx context.Context, rawURL, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid source URL %q: %w", rawURL, err)
	}
	tr, ok := t[strings.ToLower(u.Scheme)]
	if !ok {
		return fmt.Errorf("no transport for scheme %q", u.Scheme)
	}
	return tr.Fetch(ctx, rawURL, dest)
}

func writeFile(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return f.Close()
}
