// Package report renders datasets, link tables and run comparisons.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with mermaid charts for sharing
//   - CSVWriter: the broken-link export
//
// Summary and comparison writers implement the Writer interface and can be
// combined with MultiWriter.
package report
