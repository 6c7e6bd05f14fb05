package flutterwave

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// InitializeRequest carries the fields Flutterwave's hosted checkout needs.
type InitializeRequest struct {
	TxRef         string
	Amount        int64
	Currency      string
	RedirectURL   string
	PaymentMethod string // card, momo
	CustomerEmail string
	CustomerPhone string
	CustomerName  string
	Description   string
}

// VerifyResult is the subset of the verify response the ledger consumes.
type VerifyResult struct {
	Status        string // outer response status, "success" on 2xx
	DataStatus    string // transaction status, "successful" when settled
	TxRef         string
	TransactionID string
	Amount        int64
	Currency      string
}

// Client is the payment gateway surface the services depend on. The HTTP
// implementation talks to Flutterwave v3; tests substitute a stub.
type Client interface {
	Initialize(req InitializeRequest) (link string, err error)
	Verify(transactionID string) (VerifyResult, error)
	Refund(transactionID string, amount int64) error
}

type httpClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewHTTP(secretKey, baseURL string) Client {
	return &httpClient{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpClient) Initialize(req InitializeRequest) (string, error) {
	options := "card"
	if req.PaymentMethod == "momo" {
		options = "mobilemoneyrwanda"
	}
	body := map[string]any{
		"tx_ref":          req.TxRef,
		"amount":          req.Amount,
		"currency":        req.Currency,
		"redirect_url":    req.RedirectURL,
		"payment_options": options,
		"customer": map[string]any{
			"email":       req.CustomerEmail,
			"phonenumber": req.CustomerPhone,
			"name":        req.CustomerName,
		},
		"customizations": map[string]any{
			"title":       "Car Rental Payment",
			"description": req.Description,
		},
	}
	b, _ := json.Marshal(body)

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/payments", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("flutterwave initialize failed: %s", resp.Status)
	}

	var out struct {
		Status string `json:"status"`
		Data   struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Status != "success" || out.Data.Link == "" {
		return "", errors.New("flutterwave: empty checkout link")
	}
	return out.Data.Link, nil
}

func (c *httpClient) Verify(transactionID string) (VerifyResult, error) {
	url := fmt.Sprintf("%s/transactions/%s/verify", c.baseURL, transactionID)
	httpReq, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return VerifyResult{}, err
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return VerifyResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return VerifyResult{}, fmt.Errorf("flutterwave verify failed: %s", resp.Status)
	}

	var out struct {
		Status string `json:"status"`
		Data   struct {
			ID       int64   `json:"id"`
			TxRef    string  `json:"tx_ref"`
			Status   string  `json:"status"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{
		Status:        out.Status,
		DataStatus:    out.Data.Status,
		TxRef:         out.Data.TxRef,
		TransactionID: fmt.Sprintf("%d", out.Data.ID),
		Amount:        int64(out.Data.Amount),
		Currency:      out.Data.Currency,
	}, nil
}

func (c *httpClient) Refund(transactionID string, amount int64) error {
	url := fmt.Sprintf("%s/transactions/%s/refund", c.baseURL, transactionID)
	body := map[string]any{}
	if amount > 0 {
		body["amount"] = amount
	}
	b, _ := json.Marshal(body)

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("flutterwave refund failed: %s", resp.Status)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.Status != "success" {
		return fmt.Errorf("flutterwave refund rejected: %s", out.Status)
	}
	return nil
}

func (c *httpClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
}
