// Package volatile provides the runtime half of volgen: accessors that read
// and write memory-mapped register blocks through volatile transfers.
//
// Generated mirror types hand out Cell values. A Cell is an address and a
// Carrier; every Read or Write moves the value through memory in units of the
// carrier's transport width, so a field placed at an under-aligned offset by a
// packed layout is never accessed with a wider unit than its offset permits.
//
// Transfers:
//   - width 1 and 2 use non-inlinable load/store helpers
//   - width 4 and 8 use sync/atomic
//
// Neither form can be merged, split, cached or elided by the compiler. No
// ordering is promised relative to ordinary memory operations, and no fences
// are provided.
//
// Frame, Wrap and Unwrap spell out the carrier representation as a value:
// the units a Cell moves, in memory order. Read and Write transfer exactly
// those units, one at a time, without building a Frame.
//
// Build with the volatiledebug tag to enable base alignment checks in mirror
// constructors and span disjointness checks in Split.
package volatile
