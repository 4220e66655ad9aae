// Package announcer turns a schedule source into a stream of events, each
// delivered once its configured lead time arrives.
//
// An Announcer owns the current snapshot, a marker identifying the last
// delivered event and a refresh ticker. Poll races the refresh ticker against
// the timer of the next due event and returns whichever fires first.
package announcer
