package storage

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int32 // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
			expectError:   false,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
			expectError:   false,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&requests, 1)
				status := tt.responses[len(tt.responses)-1]
				if int(n) <= len(tt.responses) {
					status = tt.responses[n-1]
				}
				if status == http.StatusOK {
					w.Header().Set("Content-Type", "image/png")
					writeTestPNG(t, w)
					return
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(10 * time.Second)
			img, err := fetcher.FetchImage(context.Background(), server.URL)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing %q, got %q", tt.errorContains, err.Error())
				}
			} else {
				if err != nil {
					t.Fatalf("Expected success, got error: %v", err)
				}
				if img == nil {
					t.Fatal("Expected decoded image, got nil")
				}
			}

			if got := atomic.LoadInt32(&requests); got != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, got)
			}
		})
	}
}

func TestHTTPImageFetcher_DecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("not an image"))
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(10 * time.Second)
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected decode error, got nil")
	}
}

func TestHTTPImageFetcher_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPImageFetcher(10 * time.Second)
	_, err := fetcher.FetchImage(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected context deadline error, got nil")
	}
}

func TestHTTPImageFetcher_InvalidURL(t *testing.T) {
	fetcher := NewHTTPImageFetcher(time.Second)
	_, err := fetcher.FetchImage(context.Background(), "://bad-url")
	if err == nil {
		t.Fatal("Expected error for invalid URL")
	}
}

func writeTestPNG(t *testing.T, w http.ResponseWriter) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	w.Write(pngBytes(t, img))
}
