// Package registeruser implements the Register User use case.
//
// The profile is normalized and validated before the store is touched. Invalid profiles are rejected with
// circulation.ErrValidation joined with one shell.FieldError per invalid field.
package registeruser
