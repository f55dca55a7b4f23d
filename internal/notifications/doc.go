// Package notifications delivers scheduler events via pluggable targets.
//
// Two target kinds are supported: shoutrrr service URLs for push providers
// and plain JSON webhooks with an optional shared-secret header. Targets may
// carry per-event filters; the test event bypasses filters so connectivity
// checks always reach every target. Target URLs embed credentials, so log
// output identifies a target only by a short fingerprint of its scheme and
// host.
//
// When no targets are configured a no-op implementation is returned; all
// scheduler code depends only on the Service interface.
package notifications
