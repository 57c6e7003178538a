package protocol

import (
	"fmt"

	"golang.org/x/mod/semver"
)

const WordstreamVersion = "v0.3.0"

// IsCompatibleVersion checks if a worker version is compatible with the dispatcher version.
// Major versions must match; minor and patch may differ.
func IsCompatibleVersion(workerVersion, dispatcherVersion string) (bool, error) {
	if !semver.IsValid(workerVersion) {
		return false, fmt.Errorf("invalid worker version: %s", workerVersion)
	}
	if !semver.IsValid(dispatcherVersion) {
		return false, fmt.Errorf("invalid dispatcher version: %s", dispatcherVersion)
	}

	return semver.Major(workerVersion) == semver.Major(dispatcherVersion), nil
}

// CheckVersion returns an error wrapping ErrIncompatibleVersion when a
// worker may not join a dispatcher running this build.
func CheckVersion(workerVersion string) error {
	ok, err := IsCompatibleVersion(workerVersion, WordstreamVersion)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatibleVersion, err)
	}
	if !ok {
		return fmt.Errorf("%w: worker %s, dispatcher %s (required %s.x.x)",
			ErrIncompatibleVersion, workerVersion, WordstreamVersion, semver.Major(WordstreamVersion))
	}

	return nil
}
