// internal/models/roles.go
package models

import "fmt"

// IndemnitorRole returns the concrete role name for the nth indemnitor
// (1-based). Templates declare the generic "Indemnitor" role; dispatch
// and layout bind it to a numbered slot so each co-signer is a distinct
// signing party.
func IndemnitorRole(n int) string {
	return fmt.Sprintf("%s%d", RoleIndemnitor, n)
}
