// Package catalogsearch runs a free catalog search and tells, for every hit, whether the library holds it.
package catalogsearch
