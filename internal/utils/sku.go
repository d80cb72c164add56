package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// GenerateSKU builds a catalog SKU using uppercase codes and hyphens.
// Example: base "CAP", color "Light Blue", size "One Size" -> "CAP-LIGHT-BLUE-ONE-SIZE".
func GenerateSKU(baseSKU, colorCode, sizeCode string) string {
	parts := []string{
		NormalizeSKU(baseSKU),
		NormalizeSKU(colorCode),
		NormalizeSKU(sizeCode),
	}

	return strings.Trim(strings.Join(filterEmpty(parts), "-"), "-")
}

// ValidateSKU checks the normalized SKU format.
func ValidateSKU(sku string) error {
	normalized := NormalizeSKU(sku)
	if normalized == "" {
		return errors.New("sku is required")
	}

	if !skuPattern.MatchString(normalized) {
		return fmt.Errorf("sku %q may only contain letters, numbers, and hyphens", sku)
	}

	return nil
}

// NormalizeSKU uppercases a SKU and folds spaces and underscores into hyphens,
// so "DARK-Dark Grey Heather-S" and "dark_dark-grey-heather_s" compare equal.
func NormalizeSKU(value string) string {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	for strings.Contains(normalized, "--") {
		normalized = strings.ReplaceAll(normalized, "--", "-")
	}
	return normalized
}

func filterEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
