// Package ids provides the identifier scheme shared by every record in the lending store.
//
//	Overview
//
// Books, users and checkouts are all named by a single unsigned 32-bit value. The three
// record classes share one value space: a value that is live on a book can never be live on a
// user or a checkout at the same time. This lets a person type any code they were shown into
// any command, and the store can tell them precisely what kind of record it names.
//
//	Text form
//
// An ID is shown to people as RFC 4648 base-32 (upper-case alphabet, no padding) of its four
// big-endian bytes. Every encoding is exactly seven characters:
//
//   - 0x8C1F_2A40 → "RQPSUQA"
//
//   - 0x0800_0000 → "BAAAAAA" (the smallest value ever minted)
//
//   - 0xFFFF_FFFF → "777777Y"
//
// The last character carries only two bits of the value, so it is always one of A, I, Q
// or Y. Values below 2^27 have a zero top character ("A…") and are never minted, so every
// code a user sees starts with a character other than A.
//
//	Classification
//
// Parsing text only yields a number. Which class the number belongs to is answered by a
// Classifier, normally the store itself, which probes its three mappings. Decode returns the
// tagged pair (ID, Class); Expect narrows that to one class and reports a MismatchError when
// the code names a record of another class.
package ids
