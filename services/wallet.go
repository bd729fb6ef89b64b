// services/wallet.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ValueTransfer is the external fungible-value collaborator. Debit fails when
// the account cannot cover the amount, and that failure aborts the enclosing
// engine operation; Credit is assumed to succeed for any valid account.
type ValueTransfer interface {
	Debit(ctx context.Context, account string, amount int64) error
	Credit(ctx context.Context, account string, amount int64) error
	BalanceOf(ctx context.Context, account string) (int64, error)
}

// WalletServiceClient talks to the platform wallet service over HTTP,
// authenticated with the shared service token.
type WalletServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewWalletServiceClient(baseURL, token string) *WalletServiceClient {
	return &WalletServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *WalletServiceClient) post(ctx context.Context, path, account string, amount int64) error {
	body, _ := json.Marshal(map[string]interface{}{
		"account": account,
		"amount":  amount,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("wallet service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("wallet service %s returned %d: %s", path, resp.StatusCode, string(raw))
		return ErrTransferFailed
	}
	return nil
}

func (c *WalletServiceClient) Debit(ctx context.Context, account string, amount int64) error {
	return c.post(ctx, "/api/v1/accounts/debit", account, amount)
}

func (c *WalletServiceClient) Credit(ctx context.Context, account string, amount int64) error {
	return c.post(ctx, "/api/v1/accounts/credit", account, amount)
}

func (c *WalletServiceClient) BalanceOf(ctx context.Context, account string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/v1/accounts/%s/balance", c.BaseURL, account), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("wallet service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("wallet service balance returned %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		Balance int64 `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}
