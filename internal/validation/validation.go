// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules defined in struct tags
// and converts validation errors into field errors the client can
// understand.
package validation
