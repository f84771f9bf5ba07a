// =============================================================================
// NFC-e to PDF Converter - Validation Module
// =============================================================================
//
// This module runs sanity checks on a built document. Validation never stops
// a conversion: every finding is a warning that the orchestrator logs next to
// the document it belongs to.
//
// CHECKS:
//   - Access key present
//   - Access key length (44 digits)
//   - Access key model digits ("65" for NFC-e)
//   - Access key check digit (modulo 11)
//   - At least one line item
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfce"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfexml"
)

// ModelNFCe is the document model code of an NFC-e, found at positions 21-22
// of the access key.
const ModelNFCe = "65"

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Field is the document field the finding is about.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the short name of the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[WARNING] Field '%s' (%s): %s (value: '%s')",
		e.Field,
		e.Rule,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// DOCUMENT VALIDATION
// =============================================================================

// Validate checks doc and returns its findings, or nil when there are none.
func Validate(doc *nfce.Document) []*ValidationError {
	var findings []*ValidationError

	findings = append(findings, ValidateAccessKey(doc.AccessKey)...)

	if len(doc.Items) == 0 {
		findings = append(findings, &ValidationError{
			Field:   "det",
			Rule:    "items",
			Message: "document has no line items",
		})
	}

	return findings
}

// ValidateAccessKey checks the structure of an access key.
//
// RETURNS:
//   - A finding per failed rule. Length and check digit rules are skipped
//     once the key is known to be missing.
func ValidateAccessKey(key string) []*ValidationError {
	if key == "" {
		return []*ValidationError{{
			Field:   "chNFe",
			Rule:    "required",
			Message: "access key not found; output is named after the source file",
		}}
	}

	var findings []*ValidationError

	if len(key) != nfexml.AccessKeyLength {
		findings = append(findings, &ValidationError{
			Field:   "chNFe",
			Value:   key,
			Rule:    "length",
			Message: fmt.Sprintf("access key has %d digits, expected %d", len(key), nfexml.AccessKeyLength),
		})
		return findings
	}

	if model := key[20:22]; model != ModelNFCe {
		findings = append(findings, &ValidationError{
			Field:   "chNFe",
			Value:   key,
			Rule:    "model",
			Message: fmt.Sprintf("document model is %s, expected %s (NFC-e)", model, ModelNFCe),
		})
	}

	if want := CheckDigit(key[:43]); int(key[43]-'0') != want {
		findings = append(findings, &ValidationError{
			Field:   "chNFe",
			Value:   key,
			Rule:    "check_digit",
			Message: fmt.Sprintf("check digit is %c, expected %d", key[43], want),
		})
	}

	return findings
}

// CheckDigit computes the modulo 11 check digit of the first 43 digits of an
// access key. Weights run from 2 to 9 starting at the rightmost digit and
// wrap around; a remainder of 0 or 1 yields 0.
func CheckDigit(digits string) int {
	sum, weight := 0, 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	if rem := sum % 11; rem >= 2 {
		return 11 - rem
	}
	return 0
}

// FormatErrors formats findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d warning(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
