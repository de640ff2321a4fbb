package domain

import (
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
	apperrors "github.com/louisbranch/proposals/internal/platform/errors"
	"github.com/shopspring/decimal"
)

const (
	msgNotBlank        = "must not be blank"
	msgNotNull         = "must not be null"
	msgInvalidDocument = "document is not a valid CPF or CNPJ"
	msgInvalidEmail    = "must be a well-formed email address"
	msgInvalidDecimal  = "must be a valid decimal number"
	msgNegativeSalary  = "must be greater than or equal to 0"
	msgSalaryBounds    = "numeric value out of bounds (<18 digits>.<2 digits> expected)"
)

// Salary bounds match the NUMERIC(20,2) column.
const (
	salaryIntegerDigits  = 18
	salaryFractionDigits = 2
)

// salaryPattern admits plain decimal notation only.
var salaryPattern = regexp.MustCompile(`^-?(\d+)(?:\.(\d+))?$`)

// Input is a raw proposal submission.
type Input struct {
	Document string
	Name     string
	Email    string
	Address  string
	Salary   string
}

// Validated is an Input that passed every field constraint.
type Validated struct {
	Document     string
	DocumentKind DocumentKind
	Name         string
	Email        string
	Address      string
	Salary       decimal.Decimal
}

// Validate checks every field constraint of in. On failure it returns one
// violation per violated constraint, so a field may appear twice, in
// document, name, email, address, salary order.
func Validate(in Input) (Validated, []apperrors.FieldViolation) {
	var (
		out        Validated
		violations []apperrors.FieldViolation
	)
	add := func(field, description string) {
		violations = append(violations, apperrors.FieldViolation{Field: field, Description: description})
	}

	document := strings.TrimSpace(in.Document)
	if document == "" {
		add("document", msgNotBlank)
	}
	if normalized, kind, ok := NormalizeDocument(document); ok {
		out.Document = normalized
		out.DocumentKind = kind
	} else {
		add("document", msgInvalidDocument)
	}

	out.Name = strings.TrimSpace(in.Name)
	if out.Name == "" {
		add("name", msgNotBlank)
	}

	out.Email = strings.TrimSpace(in.Email)
	switch {
	case out.Email == "":
		add("email", msgNotBlank)
	case !govalidator.IsEmail(out.Email):
		add("email", msgInvalidEmail)
	}

	out.Address = strings.TrimSpace(in.Address)
	if out.Address == "" {
		add("address", msgNotBlank)
	}

	salary := strings.TrimSpace(in.Salary)
	if salary == "" {
		add("salary", msgNotNull)
	} else if parts := salaryPattern.FindStringSubmatch(salary); parts == nil {
		add("salary", msgInvalidDecimal)
	} else if amount, err := decimal.NewFromString(salary); err != nil {
		add("salary", msgInvalidDecimal)
	} else {
		negative := amount.IsNegative()
		if negative {
			add("salary", msgNegativeSalary)
		}
		outOfBounds := len(strings.TrimLeft(parts[1], "0")) > salaryIntegerDigits || len(parts[2]) > salaryFractionDigits
		if outOfBounds {
			add("salary", msgSalaryBounds)
		}
		if !negative && !outOfBounds {
			out.Salary = amount
		}
	}

	if len(violations) > 0 {
		return Validated{}, violations
	}
	return out, nil
}
