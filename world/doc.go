// Package world implements the Mosaic runtime substrate.
//
// This package contains:
//   - Identifier-addressed object registry
//   - Block tree structure with cycle-safe reparenting
//   - Event dispatch with symbolic/literal fallback
//   - Tick-driven cooperative task scheduler
//   - Two-stage recompile/evaluate pipeline over the ir package
//   - Named buffers with their own variable namespaces
package world
