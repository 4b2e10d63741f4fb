package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Price list schema
//
// Only the subset of the aws_v1 price list document that this project reads
// is modelled. Term and dimension collections are JSON objects keyed by
// offer/rate code; they are decoded into slices so that "the first term" is
// the first one in the document, not an arbitrary map entry.
// ---------------------------------------------------------------------------

// PriceListItem is one decoded entry of GetProductsOutput.PriceList.
type PriceListItem struct {
	Product Product `json:"product"`
	Terms   Terms   `json:"terms"`
}

// Product holds the product family and attribute bag of a price list item.
type Product struct {
	SKU           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

// Terms groups the pricing terms of a product.
type Terms struct {
	OnDemand TermList `json:"OnDemand"`
	Reserved TermList `json:"Reserved"`
}

// Term is a single offer term with its price dimensions.
type Term struct {
	Code            string            `json:"-"`
	OfferTermCode   string            `json:"offerTermCode"`
	TermAttributes  map[string]string `json:"termAttributes"`
	PriceDimensions DimensionList     `json:"priceDimensions"`
}

// PriceDimension is a single rate within a term.
type PriceDimension struct {
	RateCode     string            `json:"rateCode"`
	Unit         string            `json:"unit"`
	Description  string            `json:"description"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// TermList is a document-ordered list of terms.
type TermList []Term

// DimensionList is a document-ordered list of price dimensions.
type DimensionList []PriceDimension

// UnmarshalJSON decodes an object of terms keyed by term code.
func (l *TermList) UnmarshalJSON(data []byte) error {
	*l = nil
	return decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var t Term
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("term %s: %w", key, err)
		}
		t.Code = key
		*l = append(*l, t)
		return nil
	})
}

// UnmarshalJSON decodes an object of price dimensions keyed by rate code.
func (l *DimensionList) UnmarshalJSON(data []byte) error {
	*l = nil
	return decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var d PriceDimension
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("price dimension %s: %w", key, err)
		}
		if d.RateCode == "" {
			d.RateCode = key
		}
		*l = append(*l, d)
		return nil
	})
}

// decodeOrderedObject walks the members of a JSON object in document order.
// A JSON null is treated as an empty object.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("member %s: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// ---------------------------------------------------------------------------
// Parsing and validation
// ---------------------------------------------------------------------------

// ErrMalformedPriceList is returned when a price list item does not have the
// shape this project depends on.
var ErrMalformedPriceList = errors.New("malformed price list item")

// ParsePriceListItem decodes one price list JSON document and checks that the
// fields consumed downstream are present: product attributes, and an
// on-demand term whose first dimension carries a numeric USD price.
func ParsePriceListItem(raw string) (PriceListItem, error) {
	var doc struct {
		Product *Product `json:"product"`
		Terms   *Terms   `json:"terms"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return PriceListItem{}, fmt.Errorf("%w: %v", ErrMalformedPriceList, err)
	}
	if doc.Product == nil || doc.Product.Attributes == nil {
		return PriceListItem{}, fmt.Errorf("%w: missing product attributes", ErrMalformedPriceList)
	}
	if doc.Terms == nil {
		return PriceListItem{}, fmt.Errorf("%w: missing terms", ErrMalformedPriceList)
	}
	item := PriceListItem{Product: *doc.Product, Terms: *doc.Terms}
	if _, err := item.OnDemandHourly(); err != nil {
		return PriceListItem{}, err
	}
	return item, nil
}

// OnDemandHourly returns the USD price of the first dimension of the first
// on-demand term.
func (p PriceListItem) OnDemandHourly() (decimal.Decimal, error) {
	if len(p.Terms.OnDemand) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no on-demand term", ErrMalformedPriceList)
	}
	dims := p.Terms.OnDemand[0].PriceDimensions
	if len(dims) == 0 {
		return decimal.Zero, fmt.Errorf("%w: on-demand term %s has no price dimension", ErrMalformedPriceList, p.Terms.OnDemand[0].Code)
	}
	return dims[0].USD()
}

// USD parses the dimension's USD price.
func (d PriceDimension) USD() (decimal.Decimal, error) {
	s, ok := d.PricePerUnit["USD"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: dimension %s has no USD price", ErrMalformedPriceList, d.RateCode)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: dimension %s USD price %q: %v", ErrMalformedPriceList, d.RateCode, s, err)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Product attribute accessors
// ---------------------------------------------------------------------------

// InstanceType returns the instanceType attribute.
func (p PriceListItem) InstanceType() string { return p.Product.Attributes["instanceType"] }

// RegionCode returns the regionCode attribute.
func (p PriceListItem) RegionCode() string { return p.Product.Attributes["regionCode"] }

// HasShapeAttributes reports whether vcpu, memory and instanceType are all present.
func (p PriceListItem) HasShapeAttributes() bool {
	for _, k := range []string{"vcpu", "memory", "instanceType"} {
		if _, ok := p.Product.Attributes[k]; !ok {
			return false
		}
	}
	return true
}

// VCPUs parses the vcpu attribute.
func (p PriceListItem) VCPUs() (int, error) {
	return strconv.Atoi(strings.TrimSpace(p.Product.Attributes["vcpu"]))
}

// MemoryGiB parses a memory attribute of the form "<N> GiB".
func (p PriceListItem) MemoryGiB() (float64, error) {
	s := strings.TrimSpace(p.Product.Attributes["memory"])
	s = strings.TrimSuffix(s, " GiB")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// ---------------------------------------------------------------------------
// Reserved terms
// ---------------------------------------------------------------------------

// PurchaseOption is a reserved-term payment tier.
type PurchaseOption string

const (
	NoUpfront      PurchaseOption = "No Upfront"
	PartialUpfront PurchaseOption = "Partial Upfront"
	AllUpfront     PurchaseOption = "All Upfront"
)

// LeaseOneYear is the only reserved contract length considered.
const LeaseOneYear = "1yr"

// ReservedComponents returns the upfront ("Quantity") and hourly ("Hrs")
// components of the first one-year reserved term for option. found is false
// when no such term exists.
func (p PriceListItem) ReservedComponents(option PurchaseOption) (upfront, hourly decimal.Decimal, found bool, err error) {
	for _, t := range p.Terms.Reserved {
		if t.TermAttributes["PurchaseOption"] != string(option) ||
			t.TermAttributes["LeaseContractLength"] != LeaseOneYear {
			continue
		}
		upfront, hourly = decimal.Zero, decimal.Zero
		for _, d := range t.PriceDimensions {
			price, err := d.USD()
			if err != nil {
				return decimal.Zero, decimal.Zero, false, err
			}
			switch d.Unit {
			case "Hrs":
				hourly = price
			case "Quantity":
				upfront = price
			}
		}
		return upfront, hourly, true, nil
	}
	return decimal.Zero, decimal.Zero, false, nil
}
