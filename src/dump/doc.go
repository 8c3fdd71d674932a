// Package dump persists MetaElection snapshots for offline inspection.
//
// A snapshot is taken after every decision and stored under the decision's
// position in the consensus history, so the sequence of snapshots of two nodes
// can be compared index by index. InmemStore keeps a rolling window of recent
// snapshots; BadgerStore writes them all to a badger database and uses an
// InmemStore as cache.
//
// Snapshots are diagnostic. Nothing reads them back into a MetaElection.
package dump
