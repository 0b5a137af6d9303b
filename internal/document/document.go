package document

import "strings"

// Type identifies what kind of document a piece of OCR text came from
type Type string

const (
	TypeWineLabel Type = "wine_label"
	TypeReceipt   Type = "receipt"
	TypeUnknown   Type = "unknown"
)

// ParseType maps a user supplied type name to a Type.
// Accepts the canonical names plus a few short forms ("wine", "label").
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wine_label", "wine-label", "winelabel", "wine", "label":
		return TypeWineLabel, true
	case "receipt", "영수증":
		return TypeReceipt, true
	case "unknown":
		return TypeUnknown, true
	}
	return "", false
}

// Classification is the classifier's guess for a piece of text
type Classification struct {
	Type       Type     `json:"type"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators"`
}

// WineLabel holds the fields extracted from a bottle label.
// Every field is optional; the zero value is an empty record.
type WineLabel struct {
	Name           string  `json:"name,omitempty"`
	Vintage        int     `json:"vintage,omitempty"`
	Region         string  `json:"region,omitempty"`
	Appellation    string  `json:"appellation,omitempty"`
	Producer       string  `json:"producer,omitempty"`
	Variety        string  `json:"variety,omitempty"`
	Alcohol        float64 `json:"alcohol,omitempty"` // percent
	Volume         string  `json:"volume,omitempty"`
	Classification string  `json:"classification,omitempty"`
}

// IsEmpty reports whether no field was extracted
func (w WineLabel) IsEmpty() bool {
	return w == WineLabel{}
}

// Item is one purchased line on a receipt
type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Vintage  int     `json:"vintage,omitempty"`
}

// Receipt holds the fields extracted from a retail receipt.
// Items is never nil so that it always marshals as a JSON array.
type Receipt struct {
	Store         string   `json:"store,omitempty"`
	Date          string   `json:"date,omitempty"` // YYYY-MM-DD
	Time          string   `json:"time,omitempty"` // HH:MM or HH:MM:SS
	Items         []Item   `json:"items"`
	Subtotal      *float64 `json:"subtotal,omitempty"`
	Tax           *float64 `json:"tax,omitempty"`
	Total         *float64 `json:"total,omitempty"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
}

// NewReceipt returns an empty receipt with a non-nil item list
func NewReceipt() Receipt {
	return Receipt{Items: []Item{}}
}

// IsEmpty reports whether the receipt carries no data besides an empty item list
func (r Receipt) IsEmpty() bool {
	return r.Store == "" && r.Date == "" && r.Time == "" && len(r.Items) == 0 &&
		r.Subtotal == nil && r.Tax == nil && r.Total == nil && r.PaymentMethod == ""
}

// Canonical field names. These are the only keys a CanonicalWine is ever
// exchanged under once it leaves the normalizer.
const (
	FieldName           = "Name"
	FieldVintage        = "Vintage"
	FieldRegionProducer = "Region/Producer"
	FieldAppellation    = "Appellation"
	FieldVarietal       = "Varietal(품종)"
	FieldAlcohol        = "Alcohol"
	FieldVolume         = "Volume"
	FieldClassification = "Classification"
	FieldPrice          = "Price"
	FieldQuantity       = "Quantity"
	FieldStore          = "Store"
	FieldPurchaseDate   = "Purchase date"
)

// CanonicalWine is the single fixed-key record handed to persistence
type CanonicalWine struct {
	Name           string  `json:"Name,omitempty"`
	Vintage        int     `json:"Vintage,omitempty"`
	RegionProducer string  `json:"Region/Producer,omitempty"`
	Appellation    string  `json:"Appellation,omitempty"`
	Varietal       string  `json:"Varietal(품종),omitempty"`
	Alcohol        float64 `json:"Alcohol,omitempty"`
	Volume         string  `json:"Volume,omitempty"`
	Classification string  `json:"Classification,omitempty"`
	Price          float64 `json:"Price,omitempty"`
	Quantity       int     `json:"Quantity,omitempty"`
	Store          string  `json:"Store,omitempty"`
	PurchaseDate   string  `json:"Purchase date,omitempty"`
}

// IsEmpty reports whether no canonical field is set
func (c CanonicalWine) IsEmpty() bool {
	return c == CanonicalWine{}
}

// Fields returns the record as a map keyed by canonical field names.
// Unset fields are left out.
func (c CanonicalWine) Fields() map[string]any {
	m := make(map[string]any)
	putString := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	putString(FieldName, c.Name)
	if c.Vintage != 0 {
		m[FieldVintage] = c.Vintage
	}
	putString(FieldRegionProducer, c.RegionProducer)
	putString(FieldAppellation, c.Appellation)
	putString(FieldVarietal, c.Varietal)
	if c.Alcohol != 0 {
		m[FieldAlcohol] = c.Alcohol
	}
	putString(FieldVolume, c.Volume)
	putString(FieldClassification, c.Classification)
	if c.Price != 0 {
		m[FieldPrice] = c.Price
	}
	if c.Quantity != 0 {
		m[FieldQuantity] = c.Quantity
	}
	putString(FieldStore, c.Store)
	putString(FieldPurchaseDate, c.PurchaseDate)
	return m
}

// Merge fills the unset fields of c from other and returns the result
func (c CanonicalWine) Merge(other CanonicalWine) CanonicalWine {
	if c.Name == "" {
		c.Name = other.Name
	}
	if c.Vintage == 0 {
		c.Vintage = other.Vintage
	}
	if c.RegionProducer == "" {
		c.RegionProducer = other.RegionProducer
	}
	if c.Appellation == "" {
		c.Appellation = other.Appellation
	}
	if c.Varietal == "" {
		c.Varietal = other.Varietal
	}
	if c.Alcohol == 0 {
		c.Alcohol = other.Alcohol
	}
	if c.Volume == "" {
		c.Volume = other.Volume
	}
	if c.Classification == "" {
		c.Classification = other.Classification
	}
	if c.Price == 0 {
		c.Price = other.Price
	}
	if c.Quantity == 0 {
		c.Quantity = other.Quantity
	}
	if c.Store == "" {
		c.Store = other.Store
	}
	if c.PurchaseDate == "" {
		c.PurchaseDate = other.PurchaseDate
	}
	return c
}
