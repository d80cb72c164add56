package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/loganlanou/merch-storefront/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Address is the shipping recipient.
type Address struct {
	Name        string `json:"name"`
	Address1    string `json:"address1" validate:"required"`
	City        string `json:"city" validate:"required"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code" validate:"required,len=2,uppercase,alpha"`
	Zip         string `json:"zip" validate:"required"`
}

var addressMessages = map[string]string{
	"address1":     "Address is required",
	"city":         "City is required",
	"country_code": "Country is required",
	"zip":          "Postal code is required",
}

const countryFormatMessage = "Country code must be a 2-letter ISO code"

// Normalize trims every field and upper-cases the country code. A known
// country name such as "United Kingdom" becomes its code.
func (a Address) Normalize() Address {
	country := strings.TrimSpace(a.CountryCode)
	if _, named := countryCodes[strings.ToLower(country)]; named {
		country = CountryCode(country)
	}
	return Address{
		Name:        strings.TrimSpace(a.Name),
		Address1:    strings.TrimSpace(a.Address1),
		City:        strings.TrimSpace(a.City),
		StateCode:   strings.TrimSpace(a.StateCode),
		CountryCode: strings.ToUpper(country),
		Zip:         strings.TrimSpace(a.Zip),
	}
}

// Problems lists what is wrong with the address in form order. A nil slice
// means the address can be quoted.
func (a Address) Problems() []string {
	a = a.Normalize()
	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	var problems []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			problems = append(problems, addressMessages[fe.Field()])
			continue
		}
		if fe.Field() == "country_code" {
			problems = append(problems, countryFormatMessage)
		}
	}
	return problems
}

// Validate returns a validation error carrying Problems as details.
func (a Address) Validate() error {
	problems := a.Problems()
	if len(problems) == 0 {
		return nil
	}
	return apperr.New(apperr.CodeValidation, problems[0]).WithDetails(map[string]any{"errors": problems})
}

var countryCodes = map[string]string{
	"united kingdom": "GB",
	"united states":  "US",
	"canada":         "CA",
	"australia":      "AU",
	"germany":        "DE",
	"france":         "FR",
	"italy":          "IT",
	"spain":          "ES",
	"netherlands":    "NL",
	"belgium":        "BE",
	"ireland":        "IE",
	"austria":        "AT",
	"switzerland":    "CH",
	"sweden":         "SE",
	"norway":         "NO",
	"denmark":        "DK",
	"finland":        "FI",
	"poland":         "PL",
	"czech republic": "CZ",
	"hungary":        "HU",
	"romania":        "RO",
	"bulgaria":       "BG",
	"croatia":        "HR",
	"slovenia":       "SI",
	"slovakia":       "SK",
	"lithuania":      "LT",
	"latvia":         "LV",
	"estonia":        "EE",
	"cyprus":         "CY",
	"malta":          "MT",
	"luxembourg":     "LU",
}

// CountryCode maps a country name to its ISO code. Two-letter input is
// taken as a code already; anything unknown is GB.
func CountryCode(name string) string {
	trimmed := strings.TrimSpace(name)
	if code, ok := countryCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	if len(trimmed) == 2 {
		upper := strings.ToUpper(trimmed)
		for _, code := range countryCodes {
			if code == upper {
				return code
			}
		}
	}
	return "GB"
}

// ValidateStruct runs the struct tags of a request body and reports each
// failing field in the details.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return apperr.New(apperr.CodeValidation, "validation failed").WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters"
	}
	return "is invalid"
}
