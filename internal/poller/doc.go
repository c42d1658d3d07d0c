// Package poller re-runs the quote fetch on a fixed interval.
//
// Each cycle is a full paginated fetch with its own timeout; results are
// handed to a ResultHandler and not retained between cycles.
package poller
