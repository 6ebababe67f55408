// Package flows holds the request orchestrators behind Engine operations.
//
// Each Run function takes a typed dependency struct and returns a result
// carrying a failure kind, so the engine maps failures to public errors in one
// place. Flows own no resources and keep no state between calls.
package flows
