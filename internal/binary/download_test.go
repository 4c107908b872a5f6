package binary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestDownloaderDownloadToFile(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{
			name:       "successful_download",
			statusCode: http.StatusOK,
			body:       "test archive content",
			wantErr:    false,
		},
		{
			name:       "404_not_found",
			statusCode: http.StatusNotFound,
			body:       "not found",
			wantErr:    true,
		},
		{
			name:       "500_server_error",
			statusCode: http.StatusInternalServerError,
			body:       "server error",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}

				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			tmpDir := t.TempDir()
			downloader := NewDownloader(tmpDir, WithHTTPClient(server.Client()))
			destPath := filepath.Join(tmpDir, "nested", "archive.zip")

			err := downloader.DownloadToFile(context.Background(), server.URL, destPath)

			// Single attempt, even on server errors
			if n := atomic.LoadInt32(&hits); n != 1 {
				t.Errorf("requests = %d, want 1", n)
			}

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				var dlErr *DownloadError
				if !errors.As(err, &dlErr) || dlErr.StatusCode != tt.statusCode {
					t.Errorf("expected *DownloadError with status %d, got %v", tt.statusCode, err)
				}
				if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
					t.Error("destination file should not exist after failed download")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			content, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("failed to read downloaded file: %v", err)
			}
			if string(content) != tt.body {
				t.Errorf("content = %q, want %q", string(content), tt.body)
			}
			if _, err := os.Stat(destPath + ".tmp"); !os.IsNotExist(err) {
				t.Error("temp file was not cleaned up")
			}
		})
	}
}

func TestDownloader_Download_UniqueNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("payload")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	downloader := NewDownloader(tmpDir, WithHTTPClient(server.Client()))

	first, err := downloader.Download(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	second, err := downloader.Download(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if first == second {
		t.Errorf("two downloads share the path %s", first)
	}
	if filepath.Dir(first) != tmpDir {
		t.Errorf("download stored in %s, want %s", filepath.Dir(first), tmpDir)
	}
}

func TestDownloader_CustomUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "custom/2.0" {
			t.Errorf("User-Agent = %q, want custom/2.0", got)
		}
	}))
	defer server.Close()

	downloader := NewDownloader(t.TempDir(), WithHTTPClient(server.Client()), WithUserAgent("custom/2.0"))
	if _, err := downloader.Download(context.Background(), server.URL); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
}

func TestDownloader_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	downloader := NewDownloader(t.TempDir(), WithHTTPClient(server.Client()))
	_, err := downloader.Download(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
