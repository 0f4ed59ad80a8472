package internal

// RawRecord is one decoded catalog payload or imported sheet row, keyed by
// whatever names the source used.
type RawRecord map[string]any

type ImportSource string

const (
	SourceAPI  ImportSource = "api"
	SourceXLSX ImportSource = "xlsx"
	SourceHTML ImportSource = "html"
	SourcePDF  ImportSource = "pdf"
	SourceJSON ImportSource = "json"
)

// CatalogItem is the canonical decor record used for ranking and display.
type CatalogItem struct {
	ID          *int           `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	PriceSmall  *float64       `json:"priceSmall"`
	PriceMedium *float64       `json:"priceMedium"`
	PriceLarge  *float64       `json:"priceLarge"`
	MinPrice    *float64       `json:"minPrice"`
	MidPrice    *float64       `json:"midPrice"`
	Available   bool           `json:"available"`
	Region      string         `json:"region,omitempty"`
	PhotoURL    string         `json:"photoUrl,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Mid returns the resolved mid price, or 0 when it was never resolved.
func (c CatalogItem) Mid() float64 {
	if c.MidPrice == nil {
		return 0
	}
	return *c.MidPrice
}

// IDValue returns the identifier and whether one is set.
func (c CatalogItem) IDValue() (int, bool) {
	if c.ID == nil {
		return 0, false
	}
	return *c.ID, true
}

type RankedCatalog struct {
	Focus    CatalogItem   `json:"focus"`
	Category string        `json:"category"`
	Items    []CatalogItem `json:"items"`
}

// DecorRow is the snapshot form of a catalog record.
type DecorRow struct {
	ID        int
	Category  string
	Name      string
	Available bool
	MidPrice  float64
	RawJSON   string
	Source    ImportSource
}

type CategorySummary struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
}

type SyncResult struct {
	TraceID   string       `json:"traceId"`
	Source    ImportSource `json:"source"`
	Fetched   int          `json:"fetched"`
	Stored    int          `json:"stored"`
	Skipped   int          `json:"skipped"`
	CreatedAt string       `json:"createdAt,omitempty"`
}
