// fanfi-engagement-service/services/mint_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// tokenDecimals matches the FANS ERC-20 contract
const tokenDecimals = 18

// MintClient talks to the external minter service that holds the signer key
// and submits transactions to the FANS token and prediction contracts.
// When the service URL is not configured the client reports
// ErrMintNotConfigured and callers continue in database-only mode.
type MintClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewMintClient() *MintClient {
	return &MintClient{
		BaseURL: os.Getenv("MINTER_SERVICE_URL"),
		Token:   os.Getenv("MINTER_SERVICE_TOKEN"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the signer service is reachable by configuration.
func (c *MintClient) Configured() bool {
	return c.BaseURL != ""
}

type mintRequest struct {
	Wallet string `json:"wallet"`
	Amount string `json:"amount"` // base units, decimal string
	Memo   string `json:"memo,omitempty"`
}

type mintResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"tx_hash"`
	Error   string `json:"error,omitempty"`
}

// Mint requests an on-chain mint of whole FANS tokens to the wallet.
// One transaction per call, single attempt, no retry.
func (c *MintClient) Mint(ctx context.Context, wallet string, tokens int64, memo string) (string, error) {
	if !c.Configured() {
		return "", ErrMintNotConfigured
	}

	// Whole tokens → 18-decimal base units
	amount := decimal.NewFromInt(tokens).Shift(tokenDecimals)

	body, _ := json.Marshal(mintRequest{
		Wallet: wallet,
		Amount: amount.String(),
		Memo:   memo,
	})

	var out mintResponse
	if err := c.post(ctx, "/api/v1/mint", body, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("minter rejected mint: %s", out.Error)
	}
	return out.TxHash, nil
}

type balanceResponse struct {
	Wallet  string `json:"wallet"`
	Balance string `json:"balance"` // base units, decimal string
}

// BalanceOf returns the wallet's on-chain balance in whole tokens
// (truncated toward zero).
func (c *MintClient) BalanceOf(ctx context.Context, wallet string) (int64, error) {
	if !c.Configured() {
		return 0, ErrMintNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/v1/balance/%s", c.BaseURL, wallet), nil)
	if err != nil {
		return 0, err
	}
	c.auth(req)

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("minter balance returned %d: %s", resp.StatusCode, string(body))
	}

	var out balanceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, err
	}

	base, err := decimal.NewFromString(out.Balance)
	if err != nil {
		return 0, fmt.Errorf("minter returned bad balance %q: %w", out.Balance, err)
	}
	return base.Shift(-tokenDecimals).IntPart(), nil
}

type createMarketRequest struct {
	MatchIDHash string    `json:"match_id_hash"`
	LockTime    time.Time `json:"lock_time"`
	MatchTime   time.Time `json:"match_time"`
}

type createMarketResponse struct {
	Success       bool   `json:"success"`
	AlreadyExists bool   `json:"already_exists"`
	TxHash        string `json:"tx_hash"`
	Error         string `json:"error,omitempty"`
}

// CreateMarket asks the minter service to create an on-chain prediction market.
// An already-existing market is surfaced so callers can treat it as success.
func (c *MintClient) CreateMarket(ctx context.Context, matchIDHash string, lockTime, matchTime time.Time) (txHash string, alreadyExists bool, err error) {
	if !c.Configured() {
		return "", false, ErrMintNotConfigured
	}

	body, _ := json.Marshal(createMarketRequest{
		MatchIDHash: matchIDHash,
		LockTime:    lockTime,
		MatchTime:   matchTime,
	})

	var out createMarketResponse
	if err := c.post(ctx, "/api/v1/prediction/create", body, &out); err != nil {
		return "", false, err
	}
	if !out.Success && !out.AlreadyExists {
		return "", false, fmt.Errorf("minter rejected market creation: %s", out.Error)
	}
	return out.TxHash, out.AlreadyExists, nil
}

func (c *MintClient) post(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("Minter %s returned %d: %s", path, resp.StatusCode, string(respBody))
		return fmt.Errorf("minter service returned %d", resp.StatusCode)
	}

	return json.Unmarshal(respBody, out)
}

func (c *MintClient) auth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}
