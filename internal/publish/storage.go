package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/httputil"
	"github.com/avidela/folio/pkg/logger"
)

// StorageClient publishes artifacts to an HTTP blob store. Writes are
// idempotent upserts keyed by bucket/{tenant_id}/{artifact}.
type StorageClient struct {
	http    *httputil.Client
	baseURL string
	bucket  string
	apiKey  string
	logger  *logger.Logger
}

// NewStorageClient creates a blob store client.
func NewStorageClient(httpClient *httputil.Client, baseURL, bucket, apiKey string, log *logger.Logger) *StorageClient {
	return &StorageClient{
		http:    httpClient,
		baseURL: baseURL,
		bucket:  bucket,
		apiKey:  apiKey,
		logger:  log.WithField("module", "publish"),
	}
}

// Put uploads one artifact under the tenant's prefix, overwriting any
// previous version. The returned ArtifactRef carries the sanitized key
// actually written.
func (s *StorageClient) Put(ctx context.Context, tenantID, name string, data []byte) (contracts.ArtifactRef, error) {
	key := fmt.Sprintf("%s/%s", tenantID, SanitizeKey(name))
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return contracts.ArtifactRef{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", contentType(name))
	req.Header.Set("x-upsert", "true")

	resp, err := s.http.Do(req)
	if err != nil {
		return contracts.ArtifactRef{}, fmt.Errorf("upload failed for %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return contracts.ArtifactRef{}, fmt.Errorf("upload of %s rejected with status %d: %s", key, resp.StatusCode, string(body))
	}

	s.logger.WithFields(map[string]interface{}{
		"tenant_id": tenantID,
		"key":       key,
		"bytes":     len(data),
	}).Debug("Artifact published")

	return contracts.ArtifactRef{Name: name, Key: key}, nil
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".html"):
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
