// Package importers parses bulk book uploads into a normalized record list.
//
// Four wire formats are accepted: a JSON array of book objects, a JSON
// object with a "books" array, CSV with a header row, and pipe-delimited
// lines. Format detection is structural; callers receive []Record either
// way and never see the source format.
package importers
