//go:build !unix

package csi

// CellSizeFromWinsize is unavailable on this platform.
func CellSizeFromWinsize(fd int) (width, height int, ok bool) {
	return 0, 0, false
}
