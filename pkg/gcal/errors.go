package gcal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shiftcal/shiftcal/pkg/sync"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ErrMissingCredentials means no Google token is cached and the current
// context cannot run the interactive consent flow.
var ErrMissingCredentials = errors.New("no cached google credentials; run `shiftcal sync` locally to authorize")

// wrapErr translates Google API failures into the sentinels the reconciler
// understands. Everything else passes through unchanged.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%w: %s", sync.ErrNotFound, gerr.Message)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", sync.ErrAuthExpired, gerr.Message)
		}
		return err
	}

	// A revoked or expired refresh token surfaces as an oauth2 retrieve
	// error ("invalid_grant") instead of an API status code.
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %s", sync.ErrAuthExpired, rerr.ErrorCode)
	}

	return err
}
