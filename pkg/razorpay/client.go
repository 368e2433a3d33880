package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	rzpsdk "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"

	"github.com/ecosaro/marketplace-backend/pkg/config"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
)

const defaultCallTimeout = 15 * time.Second

var (
	errKeyRequired           = errors.New("razorpay key id and secret are required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")
	errLoggerRequired        = errors.New("razorpay logger is required")
)

// resource matches the create surface shared by the SDK resource clients.
type resource interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client exposes Razorpay Route primitives with centralized logging, timeouts, and error mapping.
type Client struct {
	transfers     resource
	accounts      resource
	webhookSecret string
	callTimeout   time.Duration
	logger        *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errKeyRequired
	}

	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	sdk := rzpsdk.NewClient(keyID, keySecret)
	c := &Client{
		transfers:     sdk.Transfer,
		accounts:      sdk.Account,
		webhookSecret: webhookSecret,
		callTimeout:   timeout,
		logger:        logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// SigningSecret returns the webhook secret used to verify provider callbacks.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CreateLinkedAccount provisions a Route linked account for a vendor and
// returns the provider account id.
func (c *Client) CreateLinkedAccount(ctx context.Context, params LinkedAccountParams) (string, error) {
	if err := params.validate(); err != nil {
		return "", err
	}

	c.log(ctx, "request", "create_linked_account", map[string]any{
		"reference_id":  params.ReferenceID,
		"business_name": params.BusinessName,
	})

	resp, err := c.call(ctx, c.accounts, params.toRequest())
	if err != nil {
		c.log(ctx, "error", "create_linked_account", map[string]any{"error": err.Error()})
		return "", c.mapError(err, "create linked account")
	}

	accountID := stringField(resp, "id")
	if accountID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "razorpay linked account response missing id")
	}

	c.log(ctx, "response", "create_linked_account", map[string]any{"account_id": accountID})
	return accountID, nil
}

// CreateTransfer moves funds to a linked account and returns the transfer.
func (c *Client) CreateTransfer(ctx context.Context, params TransferCreateParams) (*Transfer, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	c.log(ctx, "request", "create_transfer", map[string]any{
		"account_id":   params.AccountID,
		"amount_paise": params.AmountPaise,
		"currency":     params.currencyOrDefault(),
	})

	resp, err := c.call(ctx, c.transfers, params.toRequest())
	if err != nil {
		c.log(ctx, "error", "create_transfer", map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "create transfer")
	}

	transfer := transferFromResponse(resp)
	if transfer.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay transfer response missing id")
	}

	c.log(ctx, "response", "create_transfer", map[string]any{
		"transfer_id": transfer.ID,
		"status":      transfer.Status,
	})
	return transfer, nil
}

type callResult struct {
	resp map[string]interface{}
	err  error
}

// call runs an SDK request under the configured timeout. The SDK has no
// context support, so an abandoned call finishes in the background.
func (c *Client) call(ctx context.Context, res resource, data map[string]interface{}) (map[string]interface{}, error) {
	if res == nil {
		return nil, errors.New("razorpay client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	results := make(chan callResult, 1)
	go func() {
		resp, err := res.Create(data, nil)
		results <- callResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		return result.resp, result.err
	}
}

func (c *Client) timeout() time.Duration {
	if c == nil || c.callTimeout <= 0 {
		return defaultCallTimeout
	}
	return c.callTimeout
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"account_number", "ifsc", "secret", "email", "phone", "beneficiary"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("razorpay %s timed out", op))
	}

	var badRequest *rzperrors.BadRequestError
	if errors.As(err, &badRequest) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("razorpay %s rejected", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("razorpay %s failed", op))
}
