// Package testutil provides fixtures shared by package tests: minimal UPF
// files, directories of pseudopotentials, tar.gz archives and metadata
// documents.
//
// Fixtures are deterministic. The same element always produces the same
// bytes and therefore the same md5.
package testutil
