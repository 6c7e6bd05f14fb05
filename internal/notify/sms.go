package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"rental-backend/internal/config"
)

// SMSSender posts a message to an SMS provider's JSON API. Without an API
// URL configured the send is logged instead.
type SMSSender struct {
	APIURL   string
	APIKey   string
	SenderID string
	Client   *http.Client
}

func NewSMSSender(env config.Env) SMSSender {
	return SMSSender{
		APIURL:   env.SMSAPIURL,
		APIKey:   env.SMSAPIKey,
		SenderID: env.SMSSender,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s SMSSender) Send(phone, message string) error {
	if s.APIURL == "" || s.APIKey == "" {
		log.Printf("[MOCK SMS] to:%s msg:%s", phone, message)
		return nil
	}

	body := map[string]any{
		"to":     phone,
		"text":   message,
		"sender": s.SenderID,
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequest(http.MethodPost, s.APIURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms send failed: %s", resp.Status)
	}
	return nil
}
