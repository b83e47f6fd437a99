package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockcount-api/internal/outcome"
)

// AppsScriptStore posts the photo to a deployed Apps Script web app that saves it to Drive.
type AppsScriptStore struct {
	url    string
	client *http.Client
}

// NewAppsScriptStore creates a store posting to the web app at url.
func NewAppsScriptStore(url string, timeout time.Duration) *AppsScriptStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AppsScriptStore{url: url, client: &http.Client{Timeout: timeout}}
}

// Name implements Store.
func (s *AppsScriptStore) Name() string { return "apps_script" }

type appsScriptRequest struct {
	ImageData string `json:"imageData"`
	Filename  string `json:"filename"`
	Folder    string `json:"folder"`
}

type appsScriptResponse struct {
	Success     bool   `json:"success"`
	WebViewLink string `json:"webViewLink"`
	Error       string `json:"error"`
}

// Store implements Store.
func (s *AppsScriptStore) Store(ctx context.Context, photo *Photo, filename, folder string) outcome.Result {
	payload, err := json.Marshal(appsScriptRequest{
		ImageData: photo.Base64,
		Filename:  filename,
		Folder:    folder,
	})
	if err != nil {
		return outcome.Failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return outcome.Failure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return outcome.Failure(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome.Failure(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return outcome.Failuref("status %d", resp.StatusCode)
	}

	var result appsScriptResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return outcome.Failure(fmt.Errorf("decode response: %w", err))
	}
	if !result.Success {
		return outcome.Failuref("script reported failure: %s", result.Error)
	}
	if result.WebViewLink == "" {
		return outcome.Failuref("script returned no link")
	}

	return outcome.Success(result.WebViewLink)
}

var _ Store = (*AppsScriptStore)(nil)
