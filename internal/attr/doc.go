// Package attr provides the attribute values stored on persisted nodes.
//
// Nodes in the backing store carry an attribute bag: a JSON object whose
// values are restricted to the sealed Value types of this package. The bag
// is always written with MarshalCanonical so that two bags with the same
// content produce identical bytes.
//
// Key design constraints:
//   - Floats and integers are distinct kinds and survive a round trip:
//     a Float is always rendered with a fraction or exponent.
//   - Object keys are ordered by UTF-16 code units (RFC 8785).
//   - Strings are stored byte for byte, without Unicode normalization.
//
// attr imports nothing internal.
package attr
