// Package capture extracts a single value from the latest stored response of
// a request.
//
// An extraction selects one of three fields:
//   - body: the decoded body queried with JSONPath (filters starting with "$")
//     or XPath, then passed through a post-transform
//   - raw: the entire decoded body
//   - header: a header value looked up by name, ignoring case
//
// Queries must match exactly one node. Zero or several matches are errors.
// Requests and responses come from a Host, usually the sqlite store.
package capture
