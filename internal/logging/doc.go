// Package logging provides concrete implementations of the dbtool.Reporter interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr, styled when attached to a terminal
//   - NullLogger: Discards all messages
//   - Recorder: Keeps every message in memory (useful for testing)
//
// All implementations are safe for concurrent use by multiple goroutines.
package logging
