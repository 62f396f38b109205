package rendering

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
)

// LogoFiles are the logo file names tried in order inside the asset directory
var LogoFiles = []string{"logo.svg", "logo.png"}

// Assets holds branding assets as self-contained data URIs
type Assets struct {
	LogoURI string
}

// AssetOptions configure LoadAssets
type AssetOptions struct {
	Dir      string
	Attempts uint
	Delay    time.Duration
	Logger   *slog.Logger
}

// DefaultAssetDir returns the assets directory next to the running executable
func DefaultAssetDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "assets"
	}
	return filepath.Join(filepath.Dir(exe), "assets")
}

// LoadAssets reads the branding assets once. A missing or unreadable logo is
// logged and leaves LogoURI empty, which selects the text-only brand mark.
func LoadAssets(ctx context.Context, opts AssetOptions) *Assets {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Dir == "" {
		opts.Dir = DefaultAssetDir()
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Delay == 0 {
		opts.Delay = 100 * time.Millisecond
	}

	var lastErr error
	for _, name := range LogoFiles {
		path := filepath.Join(opts.Dir, name)
		uri, err := loadDataURI(ctx, path, opts.Attempts, opts.Delay)
		if err == nil {
			logger.Debug("loaded logo", "path", path)
			return &Assets{LogoURI: uri}
		}
		lastErr = err
	}

	logger.Warn("logo unavailable, using text brand mark", "dir", opts.Dir, "error", lastErr)
	return &Assets{}
}

// loadDataURI reads path with retry and encodes it as a base64 data URI.
// Missing files are not retried.
func loadDataURI(ctx context.Context, path string, attempts uint, delay time.Duration) (string, error) {
	var data []byte
	err := retry.Do(
		func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			data = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, fs.ErrNotExist)
		}),
	)
	if err != nil {
		return "", &AssetError{Path: path, Message: "failed to read asset", Cause: err}
	}
	if len(data) == 0 {
		return "", &AssetError{Path: path, Message: "asset is empty"}
	}

	mime := mimetype.Detect(data).String()
	if strings.HasSuffix(path, ".svg") && !strings.HasPrefix(mime, "image/svg") {
		mime = "image/svg+xml"
	}
	if base, _, found := strings.Cut(mime, ";"); found {
		mime = base
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", &AssetError{Path: path, Message: "asset is not an image: " + mime}
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
