// Package sanitizer provides input normalization for customer and catalog data.
//
// All normalization functions are idempotent: applying them twice gives the
// same result as applying them once. Invalid input is handled gracefully,
// typically by returning it trimmed rather than failing, so that validation
// stays the single place where requests are rejected.
//
// Normalization includes:
//   - Phone numbers: E.164 when parseable for a supported region, else trimmed input
//   - Emails: trimmed and lowercased
//   - Names and free text: whitespace collapsed and trimmed
//   - Slices: duplicates and empty values removed after normalization
package sanitizer
