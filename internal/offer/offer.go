package offer

// RawRecord is an offer payload exactly as the upstream API returned it.
// Field names and nesting vary across API versions, so everything is read
// through tolerant path lookups (see internal/normalize).
type RawRecord map[string]any

// Offer is the canonical, normalized job posting. String fields default to
// "" (never null) so formatting code downstream stays simple.
type Offer struct {
	OfferID      string
	Title        string
	Company      string
	Location     string
	City         string
	Department   string
	PostalCode   string
	ContractType string
	PublishedAt  string
	URL          string
	ApplyURL     string
	Salary       string
	Description  string

	// Latitude/Longitude are either both set or both nil.
	Latitude  *float64
	Longitude *float64

	OriginCode string
	// ShortageFlag is the source's labor-shortage marker (1/0); nil means
	// the source did not say, which is distinct from "no".
	ShortageFlag *int

	// SalaryMinMonthly is the conservative parsed estimate in EUR; nil when
	// nothing in the salary text parsed.
	SalaryMinMonthly *float64

	// Query context that produced the offer.
	ROMECodes []string
	Keywords  []string

	Score float64

	// RawJSON keeps a serialized copy of the source record for later
	// re-processing when the normalizer learns new fields.
	RawJSON string
}

// HasCoordinates reports whether the source supplied structured coordinates.
func (o Offer) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}
