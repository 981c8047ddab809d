// Package handler is the first layer after the router.
//
// It binds requests, validates input using the validation package, calls
// the service layer and maps results to status codes. Failures are returned
// as *errs.HTTPError for the global error handler to write.
package handler
