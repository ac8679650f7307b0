// Package bookdetails describes one book: catalog metadata, shelf status and recent demand.
package bookdetails
