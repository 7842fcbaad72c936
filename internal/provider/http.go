package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"investor-livedata/internal/domain"
)

// doGet performs a GET and maps the HTTP status onto the domain sentinels.
func doGet(ctx context.Context, client *http.Client, source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; investor-livedata/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", source, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return body, fmt.Errorf("%s API error %d: %w", source, resp.StatusCode, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return body, fmt.Errorf("%s API error %d: %w", source, resp.StatusCode, domain.ErrSymbolNotFound)
	default:
		return body, fmt.Errorf("%s API error %d: %s: %w", source, resp.StatusCode, truncate(body, 200), domain.ErrProviderUnavailable)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
