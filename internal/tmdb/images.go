package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/strmarr/strmarr/pkg/maccms"
)

// imageClient downloads artwork. Longer timeout than the API client;
// original-size backdrops can be large.
var imageClient = &http.Client{Timeout: 15 * time.Second}

// DownloadImage fetches rawURL and writes the bytes to savePath. The
// Referer is sent empty to get past hotlink protection on aggregator
// poster hosts.
func DownloadImage(ctx context.Context, rawURL, savePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", maccms.RandomUserAgent())
	req.Header.Set("Referer", "")

	resp, err := imageClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	f, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", savePath, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}
