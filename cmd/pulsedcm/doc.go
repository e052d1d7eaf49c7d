// Package pulsedcm provides the command-line interface for pulsedcm.
// It configures subcommands (ano, tags, policies, config), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/pulsedcm/pulsedcm/cmd/pulsedcm"
//	func main() { pulsedcm.Execute() }
package pulsedcm
