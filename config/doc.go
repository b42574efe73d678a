// Package config loads call files describing variadic argument lists.
//
// A call file is YAML:
//
//	name: printf-demo
//	backend: arena        # arena | native | wasm
//	arena: 64KiB
//	args:
//	  - type: int
//	    value: "42"
//	  - type: tuple<u8, u8>
//	    hex: aabb
//
// Types use the layout.Parse syntax. Scalars take a value, aggregates take
// their bytes as hex.
package config
