// Package exitcodes defines the standard exit codes used by flakescan.
package exitcodes

// Exit code constants used by flakescan:
//
// * Success (0): the analysis ran and every observed test was stable
// * UnreliableTests (1): the analysis ran and found flaky or failing tests
// * RuntimeErr (2): configuration or operational errors before/while analyzing
const (
	Success         = 0
	UnreliableTests = 1
	RuntimeErr      = 2
)
