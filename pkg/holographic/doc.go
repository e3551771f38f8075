// Package holographic is Nebula's associative word memory.
//
// Every distinct lowercased token becomes a Node holding a fixed-length vector
// of uniform random values. Words adjacent in ingested text are linked in an
// undirected EntanglementGraph, and a dense InterferenceMatrix caches the
// normalised dot product between every pair of indexed words. A Generator
// extends a prompt by greedily walking graph edges ranked by that matrix.
//
// Matrix rows are assigned from an append-only index arena in insertion
// order, so a word's row never moves for the lifetime of a Store. Once the
// arena is full, further new words are still counted (strength, last access)
// but get no row and no edges; Ingest reports them with a CAPACITY_EXCEEDED
// error after applying everything else.
//
// A Store and the Generators built on it share one lock: Ingest holds it
// exclusively through the full matrix recomputation, so a concurrent walk
// sees the matrix either before or after an ingest, never in between.
package holographic
