package types

import "strings"

// PayoutDetails holds the bank destination a vendor registered for
// settlements. Persisted as jsonb via the GORM json serializer.
type PayoutDetails struct {
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	AccountHolder string `json:"account_holder"`
}

// IsComplete reports whether all three bank fields are present.
func (d PayoutDetails) IsComplete() bool {
	return strings.TrimSpace(d.AccountNumber) != "" &&
		strings.TrimSpace(d.IFSCCode) != "" &&
		strings.TrimSpace(d.AccountHolder) != ""
}
