package fatsecret

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/lang"
)

// MaxResultsLimit is the largest page size the API accepts.
const MaxResultsLimit = 50

// SearchOption customizes a search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	region   string
	language string
}

// Region localizes results to an ISO 3166-1 alpha-2 region, such as "FR".
func Region(code string) SearchOption {
	return func(o *searchOptions) {
		o.region = code
	}
}

// Language returns results in an ISO 639-1 language. It needs a Region.
func Language(code string) SearchOption {
	return func(o *searchOptions) {
		o.language = code
	}
}

// searchParams validates the shared search inputs and builds the request
// parameters.
func searchParams(query string, page, maxResults int, opts []SearchOption) (url.Values, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.Validationf("search query is required")
	}
	if page < 0 {
		return nil, apierr.Validationf("page must be >= 0, got %d", page)
	}
	if maxResults < 1 || maxResults > MaxResultsLimit {
		return nil, apierr.Validationf("max results must be between 1 and %d, got %d", MaxResultsLimit, maxResults)
	}

	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := lang.ValidateRegion(o.region); err != nil {
		return nil, &apierr.Error{Kind: apierr.KindValidation, Message: "invalid search options", Cause: err}
	}
	if err := lang.Validate(o.language); err != nil {
		return nil, &apierr.Error{Kind: apierr.KindValidation, Message: "invalid search options", Cause: err}
	}
	if o.language != "" && o.region == "" {
		return nil, apierr.Validationf("language %q requires a region", o.language)
	}

	params := url.Values{
		"search_expression": {query},
		"page_number":       {strconv.Itoa(page)},
		"max_results":       {strconv.Itoa(maxResults)},
	}
	if o.region != "" {
		params.Set("region", lang.NormalizeRegion(o.region))
	}
	if o.language != "" {
		params.Set("language", lang.Normalize(o.language))
	}
	return params, nil
}

// validateID checks that id is a non-empty run of decimal digits.
func validateID(name, id string) error {
	if id == "" {
		return apierr.Validationf("%s is required", name)
	}
	if !isDigits(id) {
		return apierr.Validationf("%s must be numeric, got %q", name, id)
	}
	return nil
}

// NormalizeBarcode validates a UPC/EAN/GTIN barcode and returns the 13-digit
// GTIN form the API expects. EAN-8 and UPC-A codes are zero-padded; a
// GTIN-14 is accepted only with a leading zero, which is dropped.
func NormalizeBarcode(barcode string) (string, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return "", apierr.Validationf("barcode is required")
	}
	if !isDigits(barcode) {
		return "", apierr.Validationf("barcode must contain only digits, got %q", barcode)
	}

	switch len(barcode) {
	case 8, 12:
		return strings.Repeat("0", 13-len(barcode)) + barcode, nil
	case 13:
		return barcode, nil
	case 14:
		if barcode[0] == '0' {
			return barcode[1:], nil
		}
		return "", apierr.Validationf("GTIN-14 barcode %q has a packaging indicator and cannot be looked up", barcode)
	default:
		return "", apierr.Validationf("barcode must have 8, 12, 13 or 14 digits, got %d", len(barcode))
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
