// Package integration_tests holds end-to-end tests that run a complete App
// against session files written to a temp dir. The tests live in
// subpackages grouped by concern.
package integration_tests
