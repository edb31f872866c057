// Package conv provides safe integer type conversion and saturating
// arithmetic utilities used by the arena's block and commit-size math.
//
// Use cases:
//   - Validating region indices unpacked from caller-supplied IDs, so a
//     corrupted ID cannot silently wrap into a small index on 32-bit builds.
//   - Rounding commit sizes up to a page/large-page multiple without
//     wrapping on inputs near the int range's ceiling.
package conv
