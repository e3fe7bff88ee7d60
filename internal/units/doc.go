// Package units renders measurements for probe reports.
//
// ValueString turns a raw magnitude (bytes, bits per second, hertz, seconds)
// into either an exact machine form with six decimal digits or a prefixed
// human form ("1.500 MiB", "44.100 KHz", "1:02:05.123456 s"), depending on
// the Flags in effect. The timestamp helpers convert stream ticks plus a
// Rational time base into seconds while keeping NoTimestamp distinct from a
// zero tick: an unknown timestamp renders as "N/A", never as 0.
//
// The package has no dependencies on the rest of mediaprobe.
package units
