// Package main provides the mediaprobe command-line tool.
//
// The root command probes the files named on the command line and writes one
// report per file to stdout, in input order. Subcommands manage the
// configuration file, the probe history database and the optional ffprobe
// backend.
package main
