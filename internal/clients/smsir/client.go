package smsir

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"regexp"
	"time"

	"github.com/varzia/worldcup-backend/internal/logger"
	"github.com/varzia/worldcup-backend/internal/utils"
)

// Client sends verification codes through the sms.ir template API.
type Client interface {
	SendOTP(ctx context.Context, phone, code string) (int, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	apiKey     string
	templateID int
	baseURL    string
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := utils.GetEnv("SMS_IR_API_KEY", "", log)
	templateID := utils.GetEnvAsInt("SMS_IR_TEMPLATE_ID", 805161, log)
	baseURL := utils.GetEnv("SMS_IR_BASE_URL", "https://api.sms.ir", log)

	return &client{
		log:        log.With("service", "SmsClient"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		templateID: templateID,
		baseURL:    baseURL,
	}, nil
}

type verifyParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type verifyRequest struct {
	Mobile     string            `json:"mobile"`
	TemplateID int               `json:"templateId"`
	Parameters []verifyParameter `json:"parameters"`
}

// SendOTP returns the provider's HTTP status; callers decide whether a
// non-2xx status is fatal.
func (c *client) SendOTP(ctx context.Context, phone, code string) (int, error) {
	payload, err := json.Marshal(verifyRequest{
		Mobile:     phone,
		TemplateID: c.templateID,
		Parameters: []verifyParameter{{Name: "Code", Value: code}},
	})
	if err != nil {
		return 0, fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send/verify", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send sms to %s: %w", phone, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Info("SMS dispatched", "phone", phone, "status", resp.StatusCode)
	return resp.StatusCode, nil
}

var phonePattern = regexp.MustCompile(`^09\d{9}$`)

// IsValidPhone accepts local mobile numbers: 09 followed by nine digits.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// GenerateCode returns a random 6-digit verification code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing is effectively unrecoverable, but a clock-based
		// code keeps the login path alive.
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%d", 100000+n.Int64())
}
