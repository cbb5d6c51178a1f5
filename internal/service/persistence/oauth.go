package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// LoadOAuthConfig reads an installed-app client secret downloaded from Google Cloud Console
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, fmt.Sprintf("failed to read Google credentials %s", credentialsFile))
	}

	cfg, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid Google credentials file")
	}
	return cfg, nil
}

// LoadToken reads a cached OAuth token
func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfig,
				fmt.Sprintf("no Google token at %s; run 'ytscribe auth google' first", path))
		}
		return nil, errors.Wrap(err, errors.CodeConfig, "failed to read Google token")
	}

	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "Google token file is corrupt")
	}
	return &tok, nil
}

// SaveToken writes the token with owner-only permissions
func SaveToken(path string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode token")
	}
	if err := storage.WriteFile(path, b); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to save Google token")
	}
	return os.Chmod(path, 0600)
}

// NewOAuthHTTPClient builds an authorized client from the credentials and cached token
func NewOAuthHTTPClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	cfg, err := LoadOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	return cfg.Client(ctx, tok), nil
}

// AuthorizeInstalledApp runs the copy/paste OAuth flow and caches the resulting token
func AuthorizeInstalledApp(ctx context.Context, cfg *oauth2.Config, tokenFile string, out io.Writer, in io.Reader) error {
	state := uuid.NewString()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintf(out, "Open the following URL in your browser and authorize access:\n\n%s\n\n", authURL)
	fmt.Fprint(out, "Paste the authorization code: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return errors.Wrap(err, errors.CodeInvalidArg, "failed to read authorization code")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New(errors.CodeInvalidArg, "authorization code is required")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(err, errors.CodeExternal, "failed to exchange authorization code")
	}

	if err := SaveToken(tokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to %s\n", tokenFile)
	return nil
}
