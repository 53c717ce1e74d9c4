package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// FixedPath is the dataset resource fetched relative to the HTTP base URL.
const FixedPath = "attractions.json"

// Source fetches the raw dataset document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Name identifies the source in errors and logs.
	Name() string
}

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	return os.ReadFile(s.Path)
}

// HTTPSource fetches FixedPath relative to BaseURL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s HTTPSource) Name() string {
	u, err := s.resolve()
	if err != nil {
		return s.BaseURL
	}
	return u
}

func (s HTTPSource) resolve() (string, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", err
	}
	ref, _ := url.Parse(FixedPath)
	return base.ResolveReference(ref).String(), nil
}

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	target, err := s.resolve()
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", s.BaseURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Source: target, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// ObjectGetter is satisfied by *storage.S3Service.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucketName, objectKey string) ([]byte, error)
}

// S3Source reads the dataset from an object in an S3-compatible bucket.
type S3Source struct {
	Store  ObjectGetter
	Bucket string
	Key    string
	// StatusOf maps a storage error onto an HTTP status, 0 when unknown.
	StatusOf func(error) int
}

func (s S3Source) Name() string { return "s3://" + s.Bucket + "/" + s.Key }

func (s S3Source) Fetch(ctx context.Context) ([]byte, error) {
	data, err := s.Store.GetObject(ctx, s.Bucket, s.Key)
	if err != nil {
		if s.StatusOf != nil {
			if code := s.StatusOf(err); code != 0 && code != http.StatusOK {
				return nil, &TransportError{Source: s.Name(), StatusCode: code}
			}
		}
		return nil, err
	}
	return data, nil
}

// PayloadReader is satisfied by *storage.Postgres.
type PayloadReader interface {
	Payloads(ctx context.Context) ([]byte, error)
}

// PostgresSource reads the dataset from a table of jsonb payloads.
type PostgresSource struct {
	Reader PayloadReader
	Table  string
}

func (s PostgresSource) Name() string { return "postgres:" + s.Table }

func (s PostgresSource) Fetch(ctx context.Context) ([]byte, error) {
	return s.Reader.Payloads(ctx)
}
