// fanfi-engagement-service/services/verifier_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// VerifierClient wraps the third-party zero-knowledge identity verifier.
// The service receives the passport attestation from the client's proof flow
// and returns the disclosed fields (wallet, nationality) when the proof holds.
type VerifierClient struct {
	BaseURL string
	Client  *http.Client
}

func NewVerifierClient() *VerifierClient {
	return &VerifierClient{
		BaseURL: os.Getenv("VERIFIER_SERVICE_URL"),
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// VerifyRequest carries the attestation exactly as produced by the client SDK
type VerifyRequest struct {
	AttestationID   string          `json:"attestationId"`
	Proof           json.RawMessage `json:"proof"`
	PublicSignals   json.RawMessage `json:"publicSignals"`
	UserContextData string          `json:"userContextData"`
}

// VerifyResult is the verifier's verdict plus disclosed subject fields
type VerifyResult struct {
	Valid             bool                   `json:"valid"`
	Wallet            string                 `json:"wallet"`
	Nationality       string                 `json:"nationality"`
	CredentialSubject map[string]interface{} `json:"credential_subject,omitempty"`
	Reason            string                 `json:"reason,omitempty"`
}

// Verify posts the attestation to the verifier service. Single attempt;
// transport errors bubble to the caller.
func (c *VerifierClient) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if c.BaseURL == "" {
		return nil, errors.New("verifier service not configured")
	}

	body, _ := json.Marshal(req)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/verify", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("Verifier returned %d: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("verifier service returned %d", resp.StatusCode)
	}

	var out VerifyResult
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
