// Package report renders probe results. Every format implements
// probe.Output: the text writer prints the bracketed key=value blocks, the
// JSON writer gathers one document per run and the table writer prints a
// per-file stream summary.
//
// Field names and their order are stable; consumers parse them.
package report
