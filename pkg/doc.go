// Package pkg provides the core libraries of qivalidate.
//
// # Overview
//
// qivalidate studies partitions of a graph's vertex set. For a partition
// with k blocks, the quotient graph Q has one vertex per block and an edge
// wherever the graph has an edge between two blocks; the qi-number of the
// partition is k - χ(Q). The validator coarsens the identity partition one
// connected merge at a time and checks that qi stays at or above
// k - critical_k + 1.
//
// The pkg directory is organized into four areas:
//
//  1. Domain: [graph], [partition], [qi], [coloring], [ops]
//  2. Runs: [validate], [report]
//  3. Infrastructure: [cache], [config], [errors], [observability], [buildinfo]
//  4. Outer surfaces: [render], [server]
//
// # Architecture
//
//	graph file (text or JSON)
//	         ↓
//	    [graph] package (read, generate)
//	         ↓
//	    [partition] package (blocks, quotient, qi memo)
//	         ↓
//	    [qi] engine (exact search, coloring oracle)
//	         ↓
//	    [validate] runner (Mc loop, verdicts, cache)
//	         ↓
//	    [report] stores, [render] diagrams, [server] API
//
// # Quick Start
//
//	g, _, err := graph.ReadGraphFile("special/petersen.txt")
//	if err != nil {
//	    return err
//	}
//	runner := validate.NewRunner(qi.DefaultEngine(), cache.NewNullCache(), 0, nil)
//	rep, err := runner.Run(ctx, g, validate.Options{Seed: 42})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rep.Outcome, rep.FinalBlocks, rep.FinalQi)
//
// # Main Packages
//
// [graph] - Undirected simple graphs with a critical_k, the text and JSON
// formats, and generators for the standard families.
//
// [partition] - Canonically labelled partitions, block connectivity, quotient
// graphs and the per-partition qi memo.
//
// [qi] - The qi engine: trivial cases, exact colorability search up to a
// block limit, and the coloring oracle beyond it.
//
// [coloring] - Coloring oracles: DSatur and a SAT encoding on gini.
//
// [ops] - Elementary operations (Sc, Su, Mu, Mc) and their compositions.
//
// [validate] - The merge-and-validate loop and batch runs.
//
// [report] - Run reports with file and MongoDB stores.
//
// [cache] - Keyed byte caches (file, Redis, none) and the qi result store.
//
// [render] - Graphviz diagrams of quotients and block clusters.
//
// [server] - The HTTP API.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/qi/...              # Specific package
//	go test -run Example ./pkg/graph  # Examples only
package pkg
