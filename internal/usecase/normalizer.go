package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Package-level compiled regex patterns for price parsing
var (
	// Currency symbols and codes anywhere, including codes glued to the number
	currencyRegex = regexp.MustCompile(`(?i)[€$£¥]|eur|usd|gbp`)

	// Leading decimal number, integer part optional, not followed by another digit group or dot
	leadingNumberRegex = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d+)?|\.\d+))(?:[^\d.]|$)`)
)

// Field aliases used by the different scraper variants, in lookup order
var (
	titleKeys    = []string{"titulo", "title", "nombre"}
	priceKeys    = []string{"precio", "precios", "price"}
	categoryKeys = []string{"categoria", "category"}
	imageKeys    = []string{"imagen", "image", "img"}
	linkKeys     = []string{"link", "url"}
	retailerKeys = []string{"supermercado", "empresa", "retailer"}
)

// Image values that mark a listing without a picture
var unavailableImageMarkers = []string{"unavailable", "no disponible"}

// RecordError describes why a single raw record could not be normalized
type RecordError struct {
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NormalizeRecord converts one raw scraper record into a ProductRecord.
// The retailer is left empty; it is assigned by the source tagger.
func NormalizeRecord(raw domain.RawRecord, placeholderImage string) (domain.ProductRecord, error) {
	title := strings.TrimSpace(stringField(raw, titleKeys))
	if title == "" {
		return domain.ProductRecord{}, &RecordError{Field: "title", Err: domain.ErrMissingField}
	}

	category := strings.TrimSpace(stringField(raw, categoryKeys))
	if category == "" {
		return domain.ProductRecord{}, &RecordError{Field: "category", Err: domain.ErrMissingField}
	}

	rawPrice, _ := lookupField(raw, priceKeys)
	price, ok := ParsePrice(rawPrice)
	if !ok {
		return domain.ProductRecord{}, &RecordError{Field: "price", Err: domain.ErrPriceAbsent}
	}
	if price < 0 {
		return domain.ProductRecord{}, &RecordError{Field: "price", Err: fmt.Errorf("%w: negative value %v", domain.ErrPriceAbsent, price)}
	}

	return domain.ProductRecord{
		Title:    title,
		Price:    price,
		Category: category,
		ImageURL: ResolveImage(stringField(raw, imageKeys), placeholderImage),
		Link:     stringField(raw, linkKeys),
	}, nil
}

// ParsePrice normalizes a raw price value to a number.
// Accepted shapes: a sequence (first element is authoritative), a currency string,
// or a native number. Anything else reports ok=false.
func ParsePrice(value any) (float64, bool) {
	if list, isList := value.([]any); isList {
		if len(list) == 0 {
			return 0, false
		}
		return parseScalarPrice(list[0])
	}
	return parseScalarPrice(value)
}

func parseScalarPrice(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, ok := parsePriceString(v)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parsePriceString removes currency markers, turns every comma into a dot and parses
// the leading numeric token up to the first space. Strings mixing both separators
// ("1.234,56") are rejected rather than guessed.
func parsePriceString(s string) (float64, bool) {
	s = currencyRegex.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ",", ".")

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}

	match := leadingNumberRegex.FindStringSubmatch(fields[0])
	if match == nil {
		return 0, false
	}

	f, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ResolveImage returns the image URL, or the placeholder when the value is blank
// or flagged by the source as unavailable. Other values pass through unchanged.
func ResolveImage(url, placeholder string) string {
	if placeholder == "" {
		placeholder = domain.DefaultPlaceholderImage
	}
	if strings.TrimSpace(url) == "" {
		return placeholder
	}

	lower := strings.ToLower(url)
	for _, marker := range unavailableImageMarkers {
		if strings.Contains(lower, marker) {
			return placeholder
		}
	}
	return url
}

// lookupField returns the first non-null value among the given keys.
// present reports whether any of the keys exists, even with a null value.
func lookupField(raw domain.RawRecord, keys []string) (value any, present bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		present = true
		if v != nil {
			return v, true
		}
	}
	return nil, present
}

// stringField returns the first non-null value among keys as text.
// Numbers are formatted; other shapes yield an empty string.
func stringField(raw domain.RawRecord, keys []string) string {
	v, _ := lookupField(raw, keys)
	return asText(v)
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
