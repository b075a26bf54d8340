// Package handler defines the boundary between the server runtime and the
// request-dispatch pipeline: the per-connection RequestContext and the
// Resolver that maps errors raised during dispatch to recovery handlers.
//
// # Error Resolution
//
// Handlers are keyed by the exact dynamic type of the registered error value.
// There is no supertype or errors.As matching — an unregistered wrapper of a
// registered type is treated as unregistered:
//
//	resolver := handler.NewResolver()
//	resolver.Register(&ValidationError{}, func(err error) error {
//		// render a 422, notify, etc.
//		return nil
//	})
//
// When dispatch surfaces an error, the pipeline calls Resolve:
//
//	resolver.Resolve(err, requestCtx)
//
// An unmatched error closes the connection without invoking anything. A
// matched handler that itself fails (error return or panic) is logged and
// the connection is closed as a safety fallback. Request-level failures
// never escape the resolver.
//
// The Resolver is safe for concurrent use by many in-flight requests.
package handler
