package report

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/community-census-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type countingDownloader struct {
	calls int
	body  []byte
	err   error
}

func (m *countingDownloader) Download(_ context.Context, _ string) ([]byte, error) {
	m.calls++
	return m.body, m.err
}

// countingTransport records round trips and refuses all of them.
type countingTransport struct {
	calls int
}

func (rt *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	rt.calls++
	return nil, errors.New("network access not expected")
}

// --- tests ---

func TestDiskCache_MissDownloadsAndStores(t *testing.T) {
	dir := t.TempDir()
	inner := &countingDownloader{body: []byte(testReportBody)}
	metrics := observability.NewMetricsForTesting()
	cache := NewDiskCache(inner, dir, metrics)

	doc, err := cache.Fetch(context.Background(), "beltline")
	require.NoError(t, err)
	assert.False(t, doc.CacheHit)
	assert.Equal(t, filepath.Join(dir, "beltline.pdf"), doc.Path)

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, testReportBody, string(data))
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReportCache.WithLabelValues("miss")), 0)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed into place")
}

func TestDiskCache_HitSkipsDownload(t *testing.T) {
	dir := t.TempDir()
	inner := &countingDownloader{body: []byte("new bytes")}
	cache := NewDiskCache(inner, dir, observability.NewMetricsForTesting())

	_, err := cache.Fetch(context.Background(), "beltline")
	require.NoError(t, err)
	doc, err := cache.Fetch(context.Background(), "beltline")
	require.NoError(t, err)

	assert.True(t, doc.CacheHit)
	assert.Equal(t, 1, inner.calls, "should only download once")
}

func TestDiskCache_HitMakesNoNetworkCall(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mount-royal.pdf"), []byte("cached"), 0o600))

	transport := &countingTransport{}
	client := testClient("https://example.invalid", observability.NewMetricsForTesting())
	client.httpClient.Transport = transport
	metrics := observability.NewMetricsForTesting()
	cache := NewDiskCache(client, dir, metrics)

	doc, err := cache.Fetch(context.Background(), "mount-royal")
	require.NoError(t, err)
	assert.True(t, doc.CacheHit)
	assert.Zero(t, transport.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReportCache.WithLabelValues("hit")), 0)
}

func TestDiskCache_DownloadFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	inner := &countingDownloader{err: &HTTPError{URL: "x", StatusCode: http.StatusNotFound}}
	cache := NewDiskCache(inner, dir, observability.NewMetricsForTesting())

	doc, err := cache.Fetch(context.Background(), "nowhere")
	require.Error(t, err)
	assert.Equal(t, filepath.Join(dir, "nowhere.pdf"), doc.Path, "path is still reported")

	_, statErr := os.Stat(doc.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestDiskCache_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	inner := &countingDownloader{body: []byte(testReportBody)}
	metrics := observability.NewMetricsForTesting()
	cache := NewDiskCache(inner, dir, metrics)

	_, err := cache.Fetch(context.Background(), "beltline")
	require.Error(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReportDownloads.WithLabelValues("write_error")), 0)
}
