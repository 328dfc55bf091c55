//go:build unix

package csi

import "golang.org/x/sys/unix"

// CellSizeFromWinsize returns the cell size in pixels reported by TIOCGWINSZ
// on fd. Many terminals leave the pixel fields zero.
func CellSizeFromWinsize(fd int) (width, height int, ok bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return 0, 0, false
	}
	return int(ws.Xpixel) / int(ws.Col), int(ws.Ypixel) / int(ws.Row), true
}
