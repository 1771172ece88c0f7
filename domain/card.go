package domain

// CardDetails holds raw card input for exactly as long as tokenization needs
// it. The fields must never be logged, persisted, or sent anywhere but the
// provider's tokenization endpoint; Zero wipes them once a token exists.
// Structural checks only; Luhn is the provider's job.
type CardDetails struct {
	Number     string `validate:"required,numeric,min=12,max=19"`
	Expiry     string `validate:"required,cardexpiry"` // MM/YY
	CVV        string `validate:"required,numeric,min=3,max=4"`
	HolderName string `validate:"required,min=2"`
}

// Zero clears the raw card fields. Called right after tokenization succeeds;
// the token is the only artifact retained.
func (c *CardDetails) Zero() {
	c.Number = ""
	c.Expiry = ""
	c.CVV = ""
	c.HolderName = ""
}

// String keeps card data out of any formatted output.
func (c CardDetails) String() string { return "CardDetails(REDACTED)" }

func (c CardDetails) GoString() string { return c.String() }
