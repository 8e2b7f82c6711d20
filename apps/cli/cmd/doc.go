// Package cmd implements the resptag CLI commands using Cobra.
//
// Available commands:
//   - send: Send a request and store the exchange
//   - record: Run a recording proxy into the store
//   - list: Display stored requests
//   - show: Display a request and its latest response
//   - extract: Extract one value from the latest response of a request
//   - describe: Print the extraction arguments for host UIs
//   - import: Load requests from curl commands or an Insomnia export
//   - init: Create a config file
//   - completion: Generate shell completion scripts
//   - version: Show resptag version information
//
// Global flags select the store, config file, logging and output format.
package cmd
