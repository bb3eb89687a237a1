// Package lang validates the localization options accepted by FatSecret
// search methods: a region (ISO 3166-1 alpha-2) and, within it, a response
// language (ISO 639-1).
package lang

import (
	"fmt"
	"strings"
)

// validLanguages contains the ISO 639-1 codes FatSecret localizes results
// into. Availability still depends on the region.
var validLanguages = map[string]string{
	"ar": "Arabic",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"ms": "Malay",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sv": "Swedish",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// validRegions contains the ISO 3166-1 alpha-2 codes FatSecret serves
// localized food and recipe data for.
var validRegions = map[string]string{
	"AE": "United Arab Emirates",
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"BE": "Belgium",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CN": "China",
	"CO": "Colombia",
	"CZ": "Czech Republic",
	"DE": "Germany",
	"DK": "Denmark",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HK": "Hong Kong",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KR": "South Korea",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PE": "Peru",
	"PH": "Philippines",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"RU": "Russia",
	"SA": "Saudi Arabia",
	"SE": "Sweden",
	"SG": "Singapore",
	"SK": "Slovakia",
	"TR": "Turkey",
	"TW": "Taiwan",
	"US": "United States",
	"VE": "Venezuela",
	"ZA": "South Africa",
}

// Normalize lowercases a language code and drops any regional suffix.
// Accepts: "pt-BR", "pt_BR", "PT" -> "pt"
func Normalize(lang string) string {
	normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(lang, "_", "-")))
	if idx := strings.Index(normalized, "-"); idx != -1 {
		return normalized[:idx]
	}
	return normalized
}

// NormalizeRegion uppercases a region code.
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// Validate checks a language code. Empty means the API default (English).
// Returns an error wrapping ErrInvalid if the code is not supported.
func Validate(lang string) error {
	if lang == "" {
		return nil
	}
	if _, ok := validLanguages[Normalize(lang)]; !ok {
		return fmt.Errorf("language %q is not supported (use ISO 639-1 codes like 'en', 'fr'): %w",
			lang, ErrInvalid)
	}
	return nil
}

// ValidateRegion checks a region code. Empty means the API default (US).
// Returns an error wrapping ErrInvalidRegion if the code is not supported.
func ValidateRegion(region string) error {
	if region == "" {
		return nil
	}
	if _, ok := validRegions[NormalizeRegion(region)]; !ok {
		return fmt.Errorf("region %q is not supported (use ISO 3166-1 alpha-2 codes like 'US', 'FR'): %w",
			region, ErrInvalidRegion)
	}
	return nil
}

// DisplayName returns the English name of a language or region code,
// falling back to the code itself. Uppercase input is read as a region
// first ("ID" is Indonesia, "id" is Indonesian).
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == strings.ToUpper(code) {
		if name, ok := validRegions[code]; ok {
			return name
		}
	}
	if name, ok := validLanguages[Normalize(code)]; ok {
		return name
	}
	if name, ok := validRegions[NormalizeRegion(code)]; ok {
		return name
	}
	return code
}
