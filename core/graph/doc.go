// Package graph builds a bidirected de Bruijn graph from a stream of DNA
// reads. It never imports internal/; keep it domain-only.
//
// A Builder runs in three phases:
//
//   - Build: one producer turns reads into canonical k-mers, one consumer
//     deduplicates them into Nodes through a sharded index.
//   - GenerateLinks: a parallel pass looks up every possible
//     one-base extension of every node.
//   - Lifecycle: external simplification marks nodes, RemoveNodes/Compact
//     retire them. Nodes are never freed while the Builder is reachable.
package graph
