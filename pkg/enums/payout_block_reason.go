package enums

// PayoutBlockReason identifies why the eligibility checks blocked a line
// item. Reasons are shown verbatim on the vendor dashboard so vendors can
// self-correct.
type PayoutBlockReason string

const (
	BlockReasonBankDetailsMissing    PayoutBlockReason = "BANK_DETAILS_MISSING"
	BlockReasonInvalidIFSCCode       PayoutBlockReason = "INVALID_IFSC_CODE"
	BlockReasonBankDetailsUnverified PayoutBlockReason = "BANK_DETAILS_UNVERIFIED"
)

// String implements fmt.Stringer.
func (r PayoutBlockReason) String() string {
	return string(r)
}
