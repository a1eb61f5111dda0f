package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rendsocial/internal/pkg/env"
)

const (
	defaultSnapBaseURL    = "https://app.sandbox.midtrans.com"
	defaultCoreAPIBaseURL = "https://api.sandbox.midtrans.com"
)

// MidtransClient talks to the Midtrans Snap and Core APIs over plain HTTP.
// It implements Gateway.
type MidtransClient struct {
	ServerKey      string
	SnapBaseURL    string
	CoreAPIBaseURL string
	MerchantName   string

	HTTPClient *http.Client
}

func NewMidtransClientFromEnv() *MidtransClient {
	return &MidtransClient{
		ServerKey:      strings.TrimSpace(env.GetEnv("MIDTRANS_SERVER_KEY", "")),
		SnapBaseURL:    strings.TrimRight(env.GetEnv("MIDTRANS_SNAP_URL", defaultSnapBaseURL), "/"),
		CoreAPIBaseURL: strings.TrimRight(env.GetEnv("MIDTRANS_API_URL", defaultCoreAPIBaseURL), "/"),
		MerchantName:   env.GetEnv("APP_NAME", "rendsocial"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapItemDetails struct {
	ID           string `json:"id"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
	Name         string `json:"name"`
	Brand        string `json:"brand,omitempty"`
	Category     string `json:"category,omitempty"`
	MerchantName string `json:"merchant_name,omitempty"`
}

type snapCustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

type snapPageExpiry struct {
	Duration int    `json:"duration"`
	Unit     string `json:"unit"`
}

type snapCreateRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	ItemDetails        []snapItemDetails      `json:"item_details"`
	CustomerDetails    snapCustomerDetails    `json:"customer_details"`
	PageExpiry         snapPageExpiry         `json:"page_expiry"`
}

type snapCreateResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CreateTransaction opens a Snap transaction for the given order. Any
// network failure, non-2xx status or malformed body is an error; the call
// is never retried here because the remote side may have committed.
func (c *MidtransClient) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*GatewayTransaction, error) {
	if strings.TrimSpace(c.ServerKey) == "" {
		return nil, errors.New("MIDTRANS_SERVER_KEY is not configured")
	}
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, errors.New("order id is required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("invalid gross amount: %d", in.Amount)
	}

	payload := snapCreateRequest{
		TransactionDetails: snapTransactionDetails{
			OrderID:     in.OrderID,
			GrossAmount: in.Amount,
		},
		ItemDetails: []snapItemDetails{
			{
				ID:           in.ItemID,
				Price:        in.Amount,
				Quantity:     1,
				Name:         in.ItemName,
				Brand:        "Membership",
				Category:     "Membership",
				MerchantName: c.MerchantName,
			},
		},
		CustomerDetails: snapCustomerDetails{
			FirstName: in.CustomerName,
			Email:     in.CustomerEmail,
		},
		// Snap pages for membership purchases are short-lived on purpose.
		PageExpiry: snapPageExpiry{
			Duration: 1,
			Unit:     "hours",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SnapBaseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authorizationHeader())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("snap create transaction failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out snapCreateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("snap create transaction returned malformed body: %w", err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return nil, errors.New("snap create transaction returned empty token")
	}

	return &GatewayTransaction{
		Token:       out.Token,
		RedirectURL: out.RedirectURL,
	}, nil
}

type coreStatusResponse struct {
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
}

// TransactionStatus queries the Core API for the provider-side status of an
// order. Used as a reconciliation fallback when a webhook is suspected lost.
func (c *MidtransClient) TransactionStatus(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(c.ServerKey) == "" {
		return "", errors.New("MIDTRANS_SERVER_KEY is not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return "", errors.New("order id is required")
	}

	statusURL := c.CoreAPIBaseURL + "/v2/" + url.PathEscape(orderID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authorizationHeader())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("transaction status query failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out coreStatusResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("transaction status query returned malformed body: %w", err)
	}
	if strings.TrimSpace(out.TransactionStatus) == "" {
		return "", fmt.Errorf("transaction status query returned no status: %s", string(respBody))
	}

	return out.TransactionStatus, nil
}

// authorizationHeader builds the Basic auth header Midtrans expects: the
// server key as username with an empty password.
func (c *MidtransClient) authorizationHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.ServerKey+":"))
}
