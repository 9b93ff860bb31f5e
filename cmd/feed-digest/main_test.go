package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"}, &bytes.Buffer{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: path}, &bytes.Buffer{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_SingleDigestPass(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC1123Z)
	stale := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC1123Z)

	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>Fresh Article</title><link>http://example.com/fresh</link><pubDate>%s</pubDate></item>
<item><title>Stale Article</title><link>http://example.com/stale</link><pubDate>%s</pubDate></item>
</channel></rss>`, recent, stale)
	}))
	defer feedServer.Close()

	tmpDir := t.TempDir()
	seenFile := filepath.Join(tmpDir, "seen.json")
	configPath := filepath.Join(tmpDir, "config.yml")
	configContent := fmt.Sprintf("feeds:\n  - %s\nsettings:\n  article_age_days: 7\n  seen_articles_file: %s\n", feedServer.URL, seenFile)
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, Opts{Config: configPath}, &out))

	htmlDoc := out.String()
	assert.Contains(t, htmlDoc, "RSS Digest")
	assert.Contains(t, htmlDoc, "Test Feed (1 articles)")
	assert.Contains(t, htmlDoc, "Fresh Article")
	assert.NotContains(t, htmlDoc, "Stale Article")
	assert.NotContains(t, htmlDoc, "Failed to Fetch")

	// seen state persisted with the delivered link only
	data, err := os.ReadFile(seenFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://example.com/fresh")
	assert.NotContains(t, string(data), "http://example.com/stale")

	// second run against unchanged upstream yields the empty digest
	out.Reset()
	require.NoError(t, run(ctx, Opts{Config: configPath}, &out))
	assert.Contains(t, out.String(), "No new articles found from the last 7 days.")
}

func TestRun_FailedFeedListed(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer feedServer.Close()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	configContent := fmt.Sprintf("feeds:\n  - %s\nsettings:\n  seen_articles_file: %s\n",
		feedServer.URL, filepath.Join(tmpDir, "seen.json"))
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, Opts{Config: configPath}, &out), "a failed feed never fails the run")

	htmlDoc := out.String()
	assert.Contains(t, htmlDoc, "Failed to Fetch (1 feeds)")
	assert.Contains(t, htmlDoc, feedServer.URL)
}

func TestSetupLog(t *testing.T) {
	// exercises both branches, no assertions beyond not panicking
	setupLog(true, false)
	setupLog(false, true)
}
