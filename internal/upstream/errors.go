// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package upstream

import (
	"errors"
	"fmt"
)

// ErrAssetNotFound indicates the asset id does not exist upstream. It is kept
// distinct from APIError so the serving layer can render a dedicated
// not-found state instead of a generic failure.
var ErrAssetNotFound = errors.New("asset not found")

// AuthError indicates the identity endpoint rejected the credential exchange.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("identity endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// APIError indicates a non-2xx response from the asset-management API that is
// not a recognized not-found case. Status and body are carried for
// diagnostics; there is no automatic retry.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// IsAuthError reports whether err is an identity/authentication failure.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
