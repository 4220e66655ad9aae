// Package listing implements the schedule CLI views: full and upcoming
// listings, the now-and-next guide, event details, venues and the live
// announcement feed.
package listing
