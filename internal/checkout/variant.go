package checkout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/cart"
)

var ErrInvalidVariantID = apperr.New(apperr.CodeValidation, "invalid variant id format")

var (
	numericVariantID = regexp.MustCompile(`^\d+$`)
	catalogVariantID = regexp.MustCompile(`^[a-zA-Z0-9\-_]{8,}$`)
)

// ValidVariantID accepts legacy all-digit IDs and catalog IDs of at least
// eight letters, digits, hyphens or underscores.
func ValidVariantID(id string) bool {
	return numericVariantID.MatchString(id) || catalogVariantID.MatchString(id)
}

// CheckItem returns ErrInvalidVariantID for a non-discount line whose variant
// ID fails ValidVariantID. Discount lines always pass.
func CheckItem(item cart.LineItem) error {
	if item.IsDiscount || ValidVariantID(item.PrintfulVariantID) {
		return nil
	}
	return fmt.Errorf("%w: item %s has %q", ErrInvalidVariantID, item.ID, item.PrintfulVariantID)
}

// Filter keeps the items that can be sent to checkout and counts the rest.
func Filter(items []cart.LineItem) (valid []cart.LineItem, dropped int) {
	valid = make([]cart.LineItem, 0, len(items))
	for _, item := range items {
		if CheckItem(item) != nil {
			dropped++
			continue
		}
		valid = append(valid, item)
	}
	return valid, dropped
}

// DroppedMessage is the notice shown when Filter dropped items.
func DroppedMessage(dropped int) string {
	if dropped <= 0 {
		return ""
	}
	return fmt.Sprintf("%d items in your cart could not be validated. Please remove them and try adding them again.", dropped)
}

// VariantID is a fulfillment variant ID on the wire: a JSON number when it
// is all digits, a JSON string otherwise.
type VariantID struct {
	num     int64
	str     string
	numeric bool
}

// ParseVariantID coerces all-digit IDs to integers. Digits that overflow
// int64 stay a string.
func ParseVariantID(s string) VariantID {
	if numericVariantID.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return VariantID{num: n, str: s, numeric: true}
		}
	}
	return VariantID{str: s}
}

func (v VariantID) IsNumeric() bool { return v.numeric }

// Int returns the numeric form and whether there is one.
func (v VariantID) Int() (int64, bool) { return v.num, v.numeric }

func (v VariantID) String() string {
	if v.numeric {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

func (v VariantID) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return []byte(strconv.FormatInt(v.num, 10)), nil
	}
	return json.Marshal(v.str)
}

func (v *VariantID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParseVariantID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("variant id must be a string or integer: %w", err)
	}
	*v = ParseVariantID(n.String())
	if !v.numeric {
		return fmt.Errorf("variant id %s is not an integer", n)
	}
	return nil
}
