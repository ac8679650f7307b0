// Package shell is the imperative shell around the circulation core: retry, journal mapping,
// catalog resolution, input validation, user-facing messages and the shared observability helpers
// used by the command and query features.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
