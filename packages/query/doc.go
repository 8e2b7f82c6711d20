// Package query extracts a single value from a decoded response body.
//
// Filters starting with "$" are evaluated as JSONPath against the body parsed
// as JSON; anything else is evaluated as XPath against the body parsed as
// markup. Every query must match exactly one node: zero matches and multiple
// matches are both errors.
package query
