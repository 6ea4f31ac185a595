package runner

import "time"

const (
	// DefaultRunCount is how many times the suite is executed when the
	// caller does not override it.
	DefaultRunCount = 5

	// DefaultPerRunTimeout bounds a single runner invocation.
	DefaultPerRunTimeout = 5 * time.Minute

	// VerboseFlag is passed to the external runner so its output carries
	// per-test identifiers the extractor can recover.
	VerboseFlag = "-v"

	// TimeoutSentinel is recorded as the stderr of a run that exceeded its
	// timeout. The run still produces a failed observation.
	TimeoutSentinel = "test execution timed out"
)

// DefaultRunnerCommand is the external test runner invoked when none is
// configured. Any runner honoring the exit-code/text contract works.
var DefaultRunnerCommand = []string{"python", "-m", "pytest"}
