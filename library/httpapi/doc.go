// Package httpapi exposes the library's command and query handlers as a JSON API on a chi router.
//
// Every response is wrapped in an Envelope. Failures carry the message of shell.UserMessage and a status
// code derived from the error class, see StatusFor.
package httpapi
