// Package schema reads register-block descriptions from YAML.
//
// Go cannot declare packed structs, so blocks whose layout needs packed(n),
// or that have no Go declaration at all, are described in a schema file and
// volgen emits a storage type for each of them.
//
// # Schema Overview
//
//	version: "1"
//	package: regs
//	structs:
//	  - name: Block
//	    layout: packed(2)     # standard, C, packed, packed(N) or align(N)
//	    fields:
//	      - {name: a, type: u8}
//	      - {name: b, type: u64}
//	      - {name: inner, type: Inner}
//	      - data: "[4]u32"    # shorthand for {name: data, type: "[4]u32"}
//
// Every struct must state its layout. Field types are primitive names (u8,
// uint32, f64, bool, ...), names of other structs in the same file, or
// arrays "[N]T" of either. Structs may be listed in any order; cycles are
// rejected.
package schema
