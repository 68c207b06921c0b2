package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source is implemented by each place the data file can live.
// A source only fetches bytes; parsing is shared.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// S3Options configures s3:// sources (AWS or MinIO).
type S3Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// NewSource picks a Source from the URI scheme: s3://, http(s)://,
// file:// or a bare path.
func NewSource(ctx context.Context, uri string, opts S3Options) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("catalog source required")
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // windows drive letters
		return FileSource{Path: uri}, nil
	}

	switch u.Scheme {
	case "file":
		return FileSource{Path: u.Path}, nil
	case "http", "https":
		return NewHTTPSource(uri), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 source %q: want s3://bucket/key", uri)
		}
		return NewS3Source(ctx, u.Host, key, opts)
	default:
		return nil, fmt.Errorf("catalog source %q: unsupported scheme %q", uri, u.Scheme)
	}
}

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", s.Path, err)
	}
	return b, nil
}

type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(rawURL string) *HTTPSource {
	return &HTTPSource{
		URL:    rawURL,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return b, nil
}

// S3Source reads the data file from one object in an S3-compatible bucket.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

func NewS3Source(ctx context.Context, bucket, key string, opts S3Options) (*S3Source, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.PathStyle {
			o.UsePathStyle = true
		}
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s: %w", s.Name(), err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %s: %w", s.Name(), err)
	}
	return b, nil
}
