// Package schemakit implements a runtime schema and typed value engine.
//
// Operators define content types ("schemas") composed of typed, ordered
// fields, then create, version, and query concrete records ("items") that
// conform to those schemas. Schemas and items are aggregate roots: all
// mutating operations run in memory over a fully loaded aggregate, and a
// Repository persists the aggregate together with its owned collections
// (fields, relations, values, history).
//
// The package exposes a Service for repository-backed orchestration and the
// aggregate types (Schema, Item) for direct in-memory use.
package schemakit
