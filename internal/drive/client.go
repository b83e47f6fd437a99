// Package drive uploads photos to Google Drive with a user OAuth2 token that
// was granted out of band and saved to a token file.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Client wraps the Drive API for folder resolution and image upload.
type Client struct {
	oauthConfig *oauth2.Config
	tokenFile   string
	timeout     time.Duration
}

// NewClient reads OAuth2 client credentials ("installed" or "web" JSON).
func NewClient(credentialsFile, tokenFile string, timeout time.Duration) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data, gdrive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oauth credentials: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log.Printf("[DriveClient] Initialized, token file: %s", tokenFile)
	return &Client{oauthConfig: cfg, tokenFile: tokenFile, timeout: timeout}, nil
}

// loadToken reads the saved token.
func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	return &tok, nil
}

func (c *Client) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(c.tokenFile, data, 0o600)
}

// IsAuthorized reports whether a usable or refreshable token is on disk.
// It makes no network calls.
func (c *Client) IsAuthorized(ctx context.Context) bool {
	tok, err := c.loadToken()
	if err != nil {
		return false
	}
	return tok.Valid() || tok.RefreshToken != ""
}

// service builds a Drive service, refreshing and persisting the token if needed.
func (c *Client) service(ctx context.Context) (*gdrive.Service, error) {
	tok, err := c.loadToken()
	if err != nil {
		return nil, fmt.Errorf("drive not authorized: %w", err)
	}

	fresh, err := c.oauthConfig.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh drive token: %w", err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := c.saveToken(fresh); err != nil {
			log.Printf("[DriveClient] Failed to persist refreshed token: %v", err)
		}
	}

	return gdrive.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(fresh)))
}

// ResolveOrCreateFolder walks a slash separated path from My Drive root,
// creating missing folders, and returns the last folder's id.
func (c *Client) ResolveOrCreateFolder(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	parent := "root"
	for _, name := range strings.Split(path, "/") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		q := fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
			escapeQuery(name), folderMimeType, parent)
		list, err := svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to look up folder %q: %w", name, err)
		}
		if len(list.Files) > 0 {
			parent = list.Files[0].Id
			continue
		}

		created, err := svc.Files.Create(&gdrive.File{
			Name:     name,
			MimeType: folderMimeType,
			Parents:  []string{parent},
		}).Fields("id").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to create folder %q: %w", name, err)
		}
		log.Printf("[DriveClient] Created folder %q (%s)", name, created.Id)
		parent = created.Id
	}

	return parent, nil
}

// UploadImage uploads data into folderID and returns the file's view link.
// Granting public read access is best effort.
func (c *Client) UploadImage(ctx context.Context, data []byte, filename, mimeType, folderID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	file := &gdrive.File{Name: filename}
	if folderID != "" {
		file.Parents = []string{folderID}
	}

	created, err := svc.Files.Create(file).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	_, err = svc.Permissions.Create(created.Id, &gdrive.Permission{Type: "anyone", Role: "reader"}).Context(ctx).Do()
	if err != nil {
		log.Printf("[DriveClient] Could not make %s public: %v", created.Id, err)
	}

	if created.WebViewLink == "" {
		return "https://drive.google.com/file/d/" + created.Id + "/view", nil
	}
	return created.WebViewLink, nil
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
