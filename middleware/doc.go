// Package middleware adapts Engine.Authenticate to net/http.
//
// [Guard] reads the Authorization bearer token, rejects requests with a JSON
// 401 and stores the verified principal in the request context for
// goAccount.PrincipalFromContext. It never touches Redis.
package middleware
