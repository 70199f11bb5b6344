package offer

// Kind distinguishes the two catalogs an offer can come from.
type Kind string

const (
	KindBank    Kind = "bank"
	KindPrivate Kind = "private"
)

// Offer is a catalog entry a user may originate a loan against. Offers are
// maintained out of band and read-only here; Amount is in currency units,
// InterestRate is an annual percentage, TermMonths a positive month count.
type Offer struct {
	ID           string  `json:"-"`
	Kind         Kind    `json:"-"`
	CreditName   string  `json:"creditName,omitempty"`
	BankName     string  `json:"bankName,omitempty"`
	LenderName   string  `json:"lenderName,omitempty"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interestRate"`
	TermMonths   int     `json:"term"`
	Description  string  `json:"description,omitempty"`
	Requirements string  `json:"requirements,omitempty"`
}

// DisplayName is the human-facing name of the offer: the credit product
// name (falling back to the bank) for bank offers, the lender for private
// ones. It is also the key text search and name sorting operate on.
func (o Offer) DisplayName() string {
	if o.Kind == KindPrivate {
		return o.LenderName
	}
	if o.CreditName != "" {
		return o.CreditName
	}
	return o.BankName
}
