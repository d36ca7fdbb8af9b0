package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/nyongesa254/velofix/configs"
	"github.com/nyongesa254/velofix/models"
	"github.com/shopspring/decimal"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackClient talks to the Paystack transaction API. It satisfies
// services.PaymentProcessor.
type PaystackClient struct {
	httpClient *http.Client
}

func NewPaystackClient() *PaystackClient {
	return &PaystackClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// InitializePayment opens a checkout session and returns the URL the
// customer is redirected to. Amounts are sent in the smallest currency
// unit, as Paystack expects.
func (p *PaystackClient) InitializePayment(amount decimal.Decimal, email, reference string) (string, error) {
	payload := map[string]interface{}{
		"email":     email,
		"amount":    amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"reference": reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal initialize payload: %v", err)
	}

	req, err := http.NewRequest("POST", paystackBaseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create initialize request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+config.Config("PAYSTACK_SECRET_KEY"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach Paystack: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("Paystack initialize error: %s", string(respBody))
		return "", fmt.Errorf("Paystack initialize returned status %d", resp.StatusCode)
	}

	var initResp initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return "", fmt.Errorf("failed to decode initialize response: %v", err)
	}
	if !initResp.Status {
		return "", fmt.Errorf("Paystack initialize failed: %s", initResp.Message)
	}

	return initResp.Data.AuthorizationURL, nil
}

// VerifyPayment reads back the transaction's current status and maps it
// onto the attempt status enum. A transaction Paystack still reports as
// pending/ongoing maps to the non-terminal pending status.
func (p *PaystackClient) VerifyPayment(reference string) (models.PaymentStatus, error) {
	req, err := http.NewRequest("GET", paystackBaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return models.PaymentPending, fmt.Errorf("failed to create verify request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+config.Config("PAYSTACK_SECRET_KEY"))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.PaymentPending, fmt.Errorf("failed to reach Paystack: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return models.PaymentPending, fmt.Errorf("Paystack verify returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var verResp verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verResp); err != nil {
		return models.PaymentPending, fmt.Errorf("failed to decode verify response: %v", err)
	}

	return MapStatus(verResp.Data.Status), nil
}

// MapStatus translates a Paystack transaction status string onto the
// attempt status enum. Used for both verify responses and webhook events.
func MapStatus(status string) models.PaymentStatus {
	switch status {
	case "success":
		return models.PaymentApproved
	case "failed":
		return models.PaymentRejected
	case "abandoned":
		return models.PaymentCancelled
	case "reversed", "refunded":
		return models.PaymentRefunded
	default:
		return models.PaymentPending
	}
}
