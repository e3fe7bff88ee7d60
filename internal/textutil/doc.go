// Package textutil holds small text helpers shared by the report writers.
//
// Report values are written one per line, so anything taken from a file
// (tag values, filenames, subtitle text) goes through SanitizeValue first.
package textutil
