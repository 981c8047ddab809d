// Package lib groups integrations that do not belong to a single layer.
//
// The job subpackage turns item changes into asynq tasks backed by Redis and
// processes them; the email subpackage renders notification templates and
// delivers them through Resend.
package lib
