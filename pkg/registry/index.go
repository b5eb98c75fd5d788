package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultRegistryURL is the URL of the fsk pack index.
	DefaultRegistryURL = "https://raw.githubusercontent.com/fsk-packs/registry/main/index.json"
)

// RegistryIndex represents the structure of the registry index.json file.
type RegistryIndex struct {
	// Packs maps a pack name to the Git repository that hosts it.
	Packs map[string]string `json:"packs"`
}

// FetchIndex fetches and parses the pack index from the given URL.
func FetchIndex(ctx context.Context, url string) (*RegistryIndex, error) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pack index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pack index returned status: %s", resp.Status)
	}

	var index RegistryIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode pack index: %w", err)
	}
	if index.Packs == nil {
		index.Packs = map[string]string{}
	}

	return &index, nil
}
