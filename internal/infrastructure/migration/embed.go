// Package migration applies the versioned SQL schema of the invoicing
// database with golang-migrate. The migrations ship inside the binary;
// a directory on disk can be used instead while authoring new ones.
package migration

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var embedded embed.FS

// Embedded returns the migrations compiled into the binary
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
