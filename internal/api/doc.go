// Package api serves the daemon's HTTP surface: health probes, ad-hoc and
// round searches, season refreshes, indexer/downloader/schedule CRUD, manual
// download dispatch, and a status summary.
//
// Handlers are thin: they decode, call the owning service, and encode. All
// responses are JSON. Errors map by classification — not-found to 404,
// validation and configuration errors to 400, everything else to 500 with a
// generic message so internals never leak.
package api
