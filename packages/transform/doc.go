// Package transform post-processes an extracted value with a named function.
//
// Available transforms:
//   - NONE: returns the value unchanged
//   - SUB_STRING: "startIndex,endIndex" selects UTF-16 code units [startIndex, endIndex)
//
// Transforms only apply to strings; any other value passes through untouched.
// Evaluate reports parameter problems as errors, while Apply folds them into
// the returned value for hosts that expect a plain string.
package transform
