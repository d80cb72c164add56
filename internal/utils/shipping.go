package utils

// Delivery message constants - change these to update site-wide
const (
	// DeliveryUK is shown for GB destinations regardless of provider estimates
	DeliveryUK = "Delivery in 3-5 working days"

	// DeliveryInternational is shown when the provider gives no estimate
	DeliveryInternational = "Delivery in 5-10 working days"

	DeliveryUKMinDays = 3
	DeliveryUKMaxDays = 5
)

// IsUK reports whether an ISO country code is Great Britain.
func IsUK(countryCode string) bool {
	return countryCode == "GB" || countryCode == "UK"
}

// DeliveryMessage returns the delivery copy for a destination country.
func DeliveryMessage(countryCode string) string {
	if IsUK(countryCode) {
		return DeliveryUK
	}
	return DeliveryInternational
}
