// Package downloader dispatches NZB locators to download clients and reads
// back their history for reconciliation.
//
// Two backend shapes are supported behind one uniform surface: SABnzbd's
// key/query API and NZBGet's JSON-RPC API. Test reports reachability, Send
// enqueues a locator, and History returns name/status pairs the scheduler
// matches against dedup tags. History statuses are normalized to lowercase
// words so the scheduler's fixed success/failure sets apply to both backends.
package downloader
