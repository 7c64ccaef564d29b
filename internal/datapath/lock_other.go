//go:build !unix

package datapath

// lockFile is a no-op here; the staged rename in bootstrap still keeps a
// concurrent first run from leaving a partial directory behind.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
