// Package config provides the configuration of linkboard: where the Result
// Document lives, how the dashboard is served, and how analytics and the run
// history behave. Values come from NewConfig defaults, overlaid by the
// .linkboard YAML file and finally by command-line flags.
package config
