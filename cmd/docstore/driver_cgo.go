//go:build cgo

package main

// Registers the "sqlite3" driver so DOCSTORE_SQLITE_DRIVER=sqlite3 can select
// mattn/go-sqlite3 in cgo builds.
import _ "github.com/mattn/go-sqlite3"
