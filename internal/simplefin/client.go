// Package simplefin fetches transactions over the SimpleFIN bridge protocol,
// an alternative aggregator for accounts Plaid cannot reach.
package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkearns/pay-the-piper/internal/common"
	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/service"
)

// Client implements service.TransactionFetcher against a SimpleFIN access URL.
type Client struct {
	accessURL    string
	accountBanks map[string]string
	httpClient   *http.Client
	retryOpts    service.RetryOptions
}

type accountSet struct {
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Posted      int64  `json:"posted"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Pending     bool   `json:"pending"`
}

// NewClient builds a client from a claim token, reusing a previously claimed
// access URL when one is saved. accountBanks maps SimpleFIN account IDs to
// bank tags so fetched transactions land under the same names as file imports.
func NewClient(token string, accountBanks map[string]string) (*Client, error) {
	auth, err := LoadOrClaimAuth(token)
	if err != nil {
		return nil, err
	}
	return newClientWithAccessURL(auth.AccessURL, accountBanks), nil
}

func newClientWithAccessURL(accessURL string, accountBanks map[string]string) *Client {
	return &Client{
		accessURL:    accessURL,
		accountBanks: accountBanks,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// claimToken exchanges a one-use claim token for an access URL. Tokens are
// base64-encoded claim URLs.
func claimToken(token string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("failed to decode token: %w", err)
		}
	}

	claimURL := string(decoded)
	if !strings.HasPrefix(claimURL, "http://") && !strings.HasPrefix(claimURL, "https://") {
		return "", fmt.Errorf("decoded token is not a URL: %s", claimURL)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Post(claimURL, "", nil)
	if err != nil {
		return "", fmt.Errorf("claim request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claim rejected: %d - %s", resp.StatusCode, string(body))
	}

	accessURL, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}

	trimmed := strings.TrimSpace(string(accessURL))
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return "", fmt.Errorf("invalid access URL received: %s", trimmed)
	}
	return trimmed, nil
}

// GetTransactions fetches posted transactions in the date range, inclusive on
// both ends. Pending transactions are skipped.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	var set accountSet
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		set, fetchErr = c.fetchAccounts(ctx, startDate, endDate)
		return fetchErr
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, acct := range set.Accounts {
		bank := c.bankFor(acct.ID)
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			date := time.Unix(tx.Posted, 0).UTC()
			if date.Before(startDate) || date.After(endDate.AddDate(0, 0, 1)) {
				continue
			}

			amount, err := parseAmount(tx.Amount)
			if err != nil {
				return nil, fmt.Errorf("failed to parse amount %q: %w", tx.Amount, err)
			}

			description := tx.Description
			if description == "" {
				description = tx.Payee
			}

			txn := model.Transaction{
				ID:          fmt.Sprintf("%s_%s", acct.ID, tx.ID),
				Date:        date,
				Description: description,
				Bank:        bank,
				Amount:      amount,
			}
			txn.Hash = txn.GenerateHash()
			transactions = append(transactions, txn)
		}
	}

	slog.Debug("fetched SimpleFIN transactions",
		"count", len(transactions),
		"accounts", len(set.Accounts))
	return transactions, nil
}

// GetAccounts returns the SimpleFIN account IDs visible through the access
// grant, for wiring up the account to bank tag mapping.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	set, err := c.fetchAccounts(ctx, time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(set.Accounts))
	for _, acct := range set.Accounts {
		ids = append(ids, acct.ID)
	}
	return ids, nil
}

func (c *Client) fetchAccounts(ctx context.Context, startDate, endDate time.Time) (accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return accountSet{}, fmt.Errorf("invalid access URL: %w", err)
	}

	// SimpleFIN's end-date is exclusive.
	q := u.Query()
	q.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))
	q.Set("end-date", strconv.FormatInt(endDate.AddDate(0, 0, 1).Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return accountSet{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return accountSet{}, &common.RetryableError{
			Err:       fmt.Errorf("SimpleFIN request failed: %w", err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return accountSet{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: SimpleFIN returned 429", common.ErrRateLimit),
			Retryable: true,
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return accountSet{}, fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, string(body))
	}

	var set accountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return accountSet{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return set, nil
}

func (c *Client) bankFor(accountID string) string {
	if bank, ok := c.accountBanks[accountID]; ok {
		return bank
	}
	return accountID
}

// parseAmount converts a SimpleFIN decimal-string amount to a signed float.
// SimpleFIN already reports debits as negative, matching the stored
// convention.
func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
