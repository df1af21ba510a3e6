// Package codec holds the rules for lowering values from one format's type
// system into another's: the parse_numbers policy for textual fields, JSON
// numbers into TOML integers and floats, and TOML date/times to and from their
// RFC 3339 text.
package codec
