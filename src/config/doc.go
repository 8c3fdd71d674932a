// Package config defines the configuration of the metavote tools.
//
// The Config object defined in this package carries the options shared by
// the commands, whether they are set from flags, from a metavote.toml file in
// the data directory, or from Go code. The data directory, Config.DataDir, is
// where the commands expect to find:
//
//  peers.json // a JSON file containing the list of peers of a replay.
//  scenario.json // (optional) the default replay scenario.
//  dump_db/ // the badger database of election snapshots, when --dump is set.
package config
