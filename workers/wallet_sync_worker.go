// workers/wallet_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"game-ledger-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletSyncClient pulls changed account balances from the wallet service
// and mirrors them into the wallet_mirror table.
type WalletSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewWalletSyncClient(db *gorm.DB) *WalletSyncClient {
	baseURL := os.Getenv("WALLET_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("WALLET_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("LEDGER_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("LEDGER_SERVICE_TOKEN environment variable is required for wallet sync")
	}

	return &WalletSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *WalletSyncClient) GetChangedAccounts(ctx context.Context, since time.Time) ([]models.WalletMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/accounts/changed", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call wallet service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("wallet service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Accounts []models.WalletMirror `json:"accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode wallet service response: %w", err)
	}

	return response.Accounts, nil
}

// PollWallets mirrors balance changes into the DB until ctx is cancelled.
func PollWallets(ctx context.Context, client *WalletSyncClient, pollInterval time.Duration) {
	log.Println("Starting wallet mirror polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Wallet polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			accounts, err := client.GetChangedAccounts(ctx, lastSyncTime)
			if err != nil {
				log.Printf("Error polling wallet service: %v", err)
				continue
			}
			if len(accounts) == 0 {
				continue
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "account_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"balance",
						"is_treasury",
						"is_active",
						"last_balance_check_at",
						"updated_at",
					}),
				},
			).Create(&accounts).Error; err != nil {
				log.Printf("Failed to upsert %d account(s) into wallet_mirror: %v", len(accounts), err)
				// Keep lastSyncTime so the same window is retried next tick.
				continue
			}

			lastSyncTime = logTime
			log.Printf("Mirrored %d wallet account(s).", len(accounts))
		}
	}
}
