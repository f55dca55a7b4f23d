// Package calendar ingests season schedules from the f1api feed and turns
// them into rounds and events.
//
// Session keys from the feed are mapped to the classifier's session type
// tokens so the scheduler and matcher compare event types without label
// translation. Refreshes replace a season's rounds atomically; failures
// surface to the caller since refreshes are user-initiated.
package calendar
