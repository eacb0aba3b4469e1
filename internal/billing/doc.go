// Package billing turns snapshots of time entries and clients into the
// derived views the dashboard shows: per-day hour buckets, bill totals,
// summary stats and merged-entry display text.
//
// Everything here is a pure function of its arguments. Callers own caching
// and recompute whenever their entry or client lists change.
package billing
