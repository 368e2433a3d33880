package razorpay

import (
	"strings"

	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
)

const defaultCurrency = "INR"

// LinkedAccountParams captures the vendor details needed to provision a
// Route linked account.
type LinkedAccountParams struct {
	ReferenceID     string
	BusinessName    string
	Email           string
	Phone           string
	AccountNumber   string
	IFSCCode        string
	BeneficiaryName string
}

func (p LinkedAccountParams) validate() error {
	missing := []string{}
	if strings.TrimSpace(p.BusinessName) == "" {
		missing = append(missing, "business_name")
	}
	if strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(p.AccountNumber) == "" {
		missing = append(missing, "account_number")
	}
	if strings.TrimSpace(p.IFSCCode) == "" {
		missing = append(missing, "ifsc_code")
	}
	if strings.TrimSpace(p.BeneficiaryName) == "" {
		missing = append(missing, "beneficiary_name")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "linked account params missing "+strings.Join(missing, ", "))
	}
	return nil
}

func (p LinkedAccountParams) toRequest() map[string]interface{} {
	req := map[string]interface{}{
		"name":         p.BusinessName,
		"email":        p.Email,
		"tnc_accepted": true,
		"account_details": map[string]interface{}{
			"business_name": p.BusinessName,
			"business_type": "individual",
		},
		"bank_account": map[string]interface{}{
			"ifsc_code":        p.IFSCCode,
			"beneficiary_name": p.BeneficiaryName,
			"account_number":   p.AccountNumber,
		},
	}
	if p.ReferenceID != "" {
		req["reference_id"] = p.ReferenceID
	}
	if p.Phone != "" {
		req["contact"] = p.Phone
	}
	return req
}

// TransferCreateParams captures a Route transfer request. Amounts are in
// paise, the provider's smallest currency unit.
type TransferCreateParams struct {
	AccountID   string
	AmountPaise int64
	Currency    string
	Notes       map[string]string
}

func (p TransferCreateParams) validate() error {
	if strings.TrimSpace(p.AccountID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer account id is required")
	}
	if p.AmountPaise <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer amount must be positive")
	}
	return nil
}

func (p TransferCreateParams) currencyOrDefault() string {
	if strings.TrimSpace(p.Currency) == "" {
		return defaultCurrency
	}
	return p.Currency
}

func (p TransferCreateParams) toRequest() map[string]interface{} {
	req := map[string]interface{}{
		"account":  p.AccountID,
		"amount":   p.AmountPaise,
		"currency": p.currencyOrDefault(),
	}
	if len(p.Notes) > 0 {
		notes := make(map[string]interface{}, len(p.Notes))
		for k, v := range p.Notes {
			notes[k] = v
		}
		req["notes"] = notes
	}
	return req
}

// Transfer is the subset of the provider transfer response the platform uses.
type Transfer struct {
	ID          string
	Status      string
	AmountPaise int64
	Currency    string
}

func transferFromResponse(resp map[string]interface{}) *Transfer {
	return &Transfer{
		ID:          stringField(resp, "id"),
		Status:      stringField(resp, "status"),
		AmountPaise: int64Field(resp, "amount"),
		Currency:    stringField(resp, "currency"),
	}
}

func stringField(resp map[string]interface{}, key string) string {
	if resp == nil {
		return ""
	}
	if v, ok := resp[key].(string); ok {
		return v
	}
	return ""
}

func int64Field(resp map[string]interface{}, key string) int64 {
	if resp == nil {
		return 0
	}
	switch v := resp[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
