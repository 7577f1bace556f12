// http_sender.go
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSender le pega al microservicio de mailing.
type HTTPSender struct {
	mailURL string
	client  *http.Client
}

func NewHTTPSender(mailURL string) *HTTPSender {
	return &HTTPSender{
		mailURL: mailURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *HTTPSender) Send(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.mailURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail service respondió %d", resp.StatusCode)
	}
	return nil
}
