// Package store provides the run journal: a record of every run and of the
// outcome for each repository it touched.
//
// Two backends implement [Store]: [Bolt], an embedded bbolt key-value file
// and the default, and the SQLite store in the sqlite sub-package. [Open]
// selects one by driver name; driver "none" returns [Discard].
//
//	journal, err := store.Open(store.DriverBolt, cfg.JournalFile())
//	defer journal.Close()
//
// The journal is written once per repository, after its reconcile, and is
// never read back by a mirror run. Only the status command reads it.
package store
