// Package engine runs de-identification over a batch of files. It selects
// target files, previews the first one on a dry run, settles where outputs go
// and then fans the remaining files out to a bounded worker pool. This
// package is internal; external consumers should use the facade in pkg/core.
package engine
