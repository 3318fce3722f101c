// Package install downloads, unpacks and registers SSSP pseudopotential
// families.
//
// An installation fetches a tar.gz archive of UPF files and a JSON
// metadata document for one configuration, validates the metadata against
// an embedded CUE schema, creates the family from the unpacked archive and
// stores the per-element parameters. Local files may replace either
// download, in which case a generic UPF family is created under a caller
// chosen label.
package install
