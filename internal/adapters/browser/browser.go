// Package browser launches the authorization URL for the user.
package browser

import (
	"errors"
	"io"
	"log/slog"
	"net/url"

	pkgbrowser "github.com/pkg/browser"

	"github.com/target/spotify-auth/internal/ports"
)

var (
	_ ports.BrowserOpener = (*SystemOpener)(nil)
	_ ports.BrowserOpener = (*LogOpener)(nil)
)

// SystemOpener opens URLs with the platform's default browser.
type SystemOpener struct {
	open func(string) error
}

// NewSystemOpener returns an opener backed by github.com/pkg/browser.
// Output of the launcher process is discarded.
func NewSystemOpener() *SystemOpener {
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
	return &SystemOpener{open: pkgbrowser.OpenURL}
}

// OpenURL launches the browser. Only http and https URLs are accepted.
func (o *SystemOpener) OpenURL(rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	return o.open(rawURL)
}

// LogOpener logs the URL instead of opening it, for headless hosts.
type LogOpener struct {
	logger *slog.Logger
}

// NewLogOpener creates a LogOpener; nil logger uses slog.Default().
func NewLogOpener(logger *slog.Logger) *LogOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogOpener{logger: logger}
}

// OpenURL logs the URL for the user to open manually.
func (o *LogOpener) OpenURL(rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	o.logger.Info("open this URL in a browser to authorize", "url", rawURL)
	return nil
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("refusing to open non-http URL")
	}
	return nil
}
