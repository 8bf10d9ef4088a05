// Package analytics derives health indicators from a loaded dataset:
// the health score and grade, trend anomalies and summaries, critical
// alerts, failing domains, the slowest links, the error-type breakdown
// and the comparison of two runs.
//
// All functions are pure; they never modify the dataset they are given.
package analytics
