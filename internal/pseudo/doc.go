// Package pseudo parses pseudopotential files into records.
//
// A UPF record is built from the raw bytes of a Unified Pseudopotential
// Format file. Parsing extracts the chemical element from the file header
// (format version 1 and 2 are both recognized) and computes the md5 of the
// content. Once stored, a record is an immutable data node in the backing
// store carrying the element, filename and md5 as attributes and the file
// itself as content.
package pseudo
