/*
Package wire implements the bounded byte-level codec that every request and
reply crossing the client/server boundary is built from.

It supplies a Cursor: a fixed-capacity byte region with a read/write position
that never reads or writes past its bounds. Every primitive (fixed-width
integers and floats, OIDs, HFIDs, BTIDs, LSAs, length-prefixed variable byte
strings) is packed big-endian and 4-byte aligned; double-width values align to
8 bytes. Exceeding the cursor's capacity returns ErrOverflow rather than
panicking or growing silently, mirroring the aligned-buffer-with-overflow-
signal pattern used throughout this codebase's storage and transport layers.

Package domain builds the typed value system on top of this codec; package
wire itself knows nothing about database types.
*/
package wire
