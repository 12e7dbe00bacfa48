package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cashier/config"
	"cashier/models"
)

// Client talks to the platform's registry and treasury HTTP APIs. It
// implements the registry and transfer ports the services consume.
type Client struct {
	registryURL string
	treasuryURL string
	apiKey      string
	http        *http.Client
}

// NewClient creates a new platform API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		registryURL: cfg.PlatformAPIURL,
		treasuryURL: cfg.TreasuryAPIURL,
		apiKey:      cfg.PlatformAPIKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode platform response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("treasury request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("treasury returned status %d", resp.StatusCode)
	}
	return nil
}

// GameByAccount resolves a registered account to its game id
func (c *Client) GameByAccount(ctx context.Context, account models.Principal) (uint64, error) {
	var out struct {
		GameID uint64 `json:"game_id"`
	}
	url := fmt.Sprintf("%s/games/by-account/%s", c.registryURL, account)
	if err := c.get(ctx, url, &out); err != nil {
		return 0, err
	}
	return out.GameID, nil
}

// IsGameVerified reports whether the platform verified the game
func (c *Client) IsGameVerified(ctx context.Context, gameID uint64) (bool, error) {
	var out struct {
		Verified bool `json:"verified"`
	}
	url := fmt.Sprintf("%s/games/%d/verified", c.registryURL, gameID)
	if err := c.get(ctx, url, &out); err != nil {
		return false, err
	}
	return out.Verified, nil
}

// IsActiveGame reports the registry-side active flag
func (c *Client) IsActiveGame(ctx context.Context, gameID uint64) (bool, error) {
	var out struct {
		Active bool `json:"active"`
	}
	url := fmt.Sprintf("%s/games/%d/active", c.registryURL, gameID)
	if err := c.get(ctx, url, &out); err != nil {
		return false, err
	}
	return out.Active, nil
}

// ProfitMargin returns the game's profit margin percentage
func (c *Client) ProfitMargin(ctx context.Context, gameID uint64) (uint32, error) {
	var out struct {
		ProfitMargin uint32 `json:"profit_margin"`
	}
	url := fmt.Sprintf("%s/games/%d", c.registryURL, gameID)
	if err := c.get(ctx, url, &out); err != nil {
		return 0, err
	}
	return out.ProfitMargin, nil
}

// Beneficiary returns the payout beneficiary for profit claims
func (c *Client) Beneficiary(ctx context.Context, gameID uint64) (models.Principal, error) {
	var out struct {
		Beneficiary string `json:"beneficiary"`
	}
	url := fmt.Sprintf("%s/games/%d", c.registryURL, gameID)
	if err := c.get(ctx, url, &out); err != nil {
		return "", err
	}
	return models.Principal(out.Beneficiary), nil
}

// IsActiveToken reports whether a token is active upstream
func (c *Client) IsActiveToken(ctx context.Context, code string) (bool, error) {
	var out struct {
		Active bool `json:"active"`
	}
	url := fmt.Sprintf("%s/tokens/%s/active", c.registryURL, code)
	if err := c.get(ctx, url, &out); err != nil {
		return false, err
	}
	return out.Active, nil
}

// Transfer moves an asset from the treasury account to a recipient
func (c *Client) Transfer(ctx context.Context, to models.Principal, asset models.Asset, memo string) error {
	body := struct {
		To        string `json:"to"`
		Value     int64  `json:"value"`
		Currency  string `json:"currency"`
		Precision int    `json:"precision"`
		Memo      string `json:"memo"`
	}{
		To:        to.String(),
		Value:     asset.Value,
		Currency:  asset.Currency,
		Precision: asset.Precision,
		Memo:      memo,
	}
	return c.post(ctx, c.treasuryURL+"/transfers", body)
}

// Balance returns the treasury account's total balance in a currency
func (c *Client) Balance(ctx context.Context, currency string) (int64, error) {
	var out struct {
		Value int64 `json:"value"`
	}
	url := fmt.Sprintf("%s/balances/%s", c.treasuryURL, currency)
	if err := c.get(ctx, url, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}
