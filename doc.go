/*
Package lifedb implements a name-keyed record store: one Store per entity
kind, each keeping its records sorted by key in memory and writing them
through to a durable Storage (Bolt, SQLite or memory).

We implement:

1. Locate, a binary search over a sorted sequence that returns either the
1-based position of a key or its negated 1-based insertion point.

2. Store, the CRUD owner of a collection. Keys are unique and compared
ordinally; records are spliced in at their insertion point, never appended
and re-sorted.

3. Lazy, the single access point per entity kind, which opens the store and
seeds its default dataset on first use.

# Technical Details

**Source of truth.**
Storage is loaded into the ordered index once, in Open. After that, every
mutation writes Storage first and updates the index only on success, so reads
are served from memory and never disagree with Storage.

**Default dataset.**
A store is seeded when its marker record (by default, the first default
record) is missing. DeleteAll clears everything and seeds again.

## Binary encoding

**Value**: value header, then encoded data.

**Value header**:
1. Flags (uvarint): format version bits and the encoding bit (msgpack/JSON).
2. Mod count (uvarint), incremented on every update.
3. xxhash64 of the data (8 bytes, little endian).

**Value data**: msgpack (or JSON) of the record struct.
*/
package lifedb
