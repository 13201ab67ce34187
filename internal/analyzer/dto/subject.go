package dto

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Market identifies the exchange family a subject trades on.
type Market string

const (
	MarketAStock  Market = "a_stock"
	MarketHKStock Market = "hk_stock"
	MarketUSStock Market = "us_stock"
)

// ErrInvalidSubject is returned for stock codes that match no known
// market format. This is a validation outcome, not a pipeline failure.
var ErrInvalidSubject = errors.New("invalid subject code")

var (
	aStockPattern   = regexp.MustCompile(`^\d{6}$`)
	hkStockPattern  = regexp.MustCompile(`^\d{1,5}$`)
	hkPrefixPattern = regexp.MustCompile(`^HK\d{1,5}$`)
	usStockPattern  = regexp.MustCompile(`^[A-Z]{1,5}$`)
)

// SubjectKey uniquely identifies one analysis target.
type SubjectKey struct {
	Market Market `json:"market"`
	Symbol string `json:"symbol"`
}

// String renders the key in its canonical "market:symbol" form, used
// for cache and registry keys.
func (k SubjectKey) String() string {
	return fmt.Sprintf("%s:%s", k.Market, k.Symbol)
}

// ParseSubject normalizes a raw stock code into a SubjectKey.
// Normalization is idempotent: parsing an already-normalized symbol
// yields the same key. Unrecognized formats are rejected.
func ParseSubject(code string) (SubjectKey, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return SubjectKey{}, fmt.Errorf("%w: empty code", ErrInvalidSubject)
	}

	switch {
	case aStockPattern.MatchString(code):
		return SubjectKey{Market: MarketAStock, Symbol: code}, nil
	case hkPrefixPattern.MatchString(code):
		return SubjectKey{Market: MarketHKStock, Symbol: padHK(strings.TrimPrefix(code, "HK"))}, nil
	case hkStockPattern.MatchString(code):
		return SubjectKey{Market: MarketHKStock, Symbol: padHK(code)}, nil
	case usStockPattern.MatchString(code):
		return SubjectKey{Market: MarketUSStock, Symbol: code}, nil
	default:
		return SubjectKey{}, fmt.Errorf("%w: %q", ErrInvalidSubject, code)
	}
}

// HK symbols are zero-padded to five digits.
func padHK(code string) string {
	for len(code) < 5 {
		code = "0" + code
	}
	return code
}
