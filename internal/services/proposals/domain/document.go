package domain

import (
	"regexp"
	"strings"
)

var (
	cpfPattern  = regexp.MustCompile(`^(?:\d{11}|\d{3}\.\d{3}\.\d{3}-\d{2})$`)
	cnpjPattern = regexp.MustCompile(`^(?:\d{14}|\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2})$`)
)

// DocumentKind distinguishes natural-person from legal-entity documents.
type DocumentKind string

const (
	DocumentKindUnknown DocumentKind = ""
	// DocumentKindCPF is an 11 digit natural-person registry number.
	DocumentKindCPF DocumentKind = "cpf"
	// DocumentKindCNPJ is a 14 digit legal-entity registry number.
	DocumentKindCNPJ DocumentKind = "cnpj"
)

// ParseDocumentKind maps a configuration value to a DocumentKind.
func ParseDocumentKind(raw string) (DocumentKind, bool) {
	switch DocumentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case DocumentKindCPF:
		return DocumentKindCPF, true
	case DocumentKindCNPJ:
		return DocumentKindCNPJ, true
	default:
		return DocumentKindUnknown, false
	}
}

// NormalizeDocument accepts a CPF or CNPJ either as bare digits or in its
// standard mask (000.000.000-00, 00.000.000/0000-00) and returns the digits
// with their kind. It returns false when the value is not a valid document
// of either kind.
func NormalizeDocument(raw string) (string, DocumentKind, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case cpfPattern.MatchString(raw):
		digits := stripMask(raw)
		if validCPF(digits) {
			return digits, DocumentKindCPF, true
		}
	case cnpjPattern.MatchString(raw):
		digits := stripMask(raw)
		if validCNPJ(digits) {
			return digits, DocumentKindCNPJ, true
		}
	}
	return "", DocumentKindUnknown, false
}

func stripMask(raw string) string {
	return strings.NewReplacer(".", "", "-", "", "/", "").Replace(raw)
}

func validCPF(digits string) bool {
	if repeated(digits) {
		return false
	}
	return checkDigit(digits[:9], cpfWeights(10)) == int(digits[9]-'0') &&
		checkDigit(digits[:10], cpfWeights(11)) == int(digits[10]-'0')
}

func validCNPJ(digits string) bool {
	if repeated(digits) {
		return false
	}
	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(digits[:12], first) == int(digits[12]-'0') &&
		checkDigit(digits[:13], second) == int(digits[13]-'0')
}

// cpfWeights returns the descending weights start, start-1, ..., 2.
func cpfWeights(start int) []int {
	weights := make([]int, 0, start-1)
	for w := start; w >= 2; w-- {
		weights = append(weights, w)
	}
	return weights
}

// checkDigit computes a mod-11 check digit.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i := range weights {
		sum += int(digits[i]-'0') * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func repeated(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
