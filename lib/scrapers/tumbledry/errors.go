package tumbledry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// the portal answered the login submit with a page that lacks the
	// authenticated marker. credentials are presumed bad, callers must
	// not retry automatically.
	ErrAuthentication = errors.New("portal rejected the login credentials")

	// an element the login flow depends on never became interactable
	// within the wait budget.
	ErrPageLoad = errors.New("timed out waiting for the page to load")

	// the requested page came back as a login redirect. fatal for the
	// store being processed, not for the whole batch.
	ErrSessionExpired = errors.New("session expired, portal redirected to login")

	// the browser transport itself reported that networking is gone.
	// once this shows up, every further request is assumed doomed.
	ErrNetworkSuspended = errors.New("network suspended")
)

// chromium error codes that indicate the transport is dead rather
// than a single request having failed
var suspendedNetworkCodes = []string{
	"ERR_NETWORK_IO_SUSPENDED",
	"ERR_INTERNET_DISCONNECTED",
}

// classifyNavError folds chromium navigation failures into the error
// taxonomy: transport-suspension codes become ErrNetworkSuspended,
// everything else passes through wrapped.
func classifyNavError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, code := range suspendedNetworkCodes {
		if strings.Contains(msg, code) {
			return fmt.Errorf("%w: %s", ErrNetworkSuspended, msg)
		}
	}
	return err
}
