// Package main provides the entry point for the linkboard CLI.
//
// linkboard turns the results.json written by a broken-link checker into an
// interactive dashboard, CSV exports and summary reports.
//
// Usage:
//
//	linkboard serve [results.json]
//	linkboard links --status 404 [results.json]
//	linkboard report --markdown -o report.md [results.json]
//
// See --help for all available options.
package main

// main is the entry point for linkboard.
func main() {
	Execute()
}
