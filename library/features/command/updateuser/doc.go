// Package updateuser implements the Update User Profile use case.
//
// The new profile replaces the stored one as a whole. Submitting the profile that is already stored is
// idempotent: nothing is written and no journal entry is appended.
package updateuser
