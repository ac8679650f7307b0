// Package catalog is a client for the BnF SRU catalog (https://catalogue.bnf.fr/api/SRU).
//
// It resolves catalog identifiers (ISBNs) to bibliographic metadata and runs free searches.
// Responses are UNIMARC records; the client extracts:
//
//	010$a ISBN
//	200$a title
//	700$a author
//	210$d publication date
//	205$a edition
//	225$a collection
//
// Requests are rate limited and bounded by a timeout. Successful lookups can be cached with
// a Cache, for example the badger-backed BadgerCache.
package catalog
