// Package gossip defines the minimal view of the gossip graph that the
// meta-voting bookkeeping depends on: events addressed by their topological
// index, who created them, and which observation, if any, they carry.
//
// Building and validating the graph is the job of the gossip layer. InmemGraph
// is a plain in-memory implementation used by tests and the replay tool.
package gossip
