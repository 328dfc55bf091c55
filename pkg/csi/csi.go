/*
Package csi provides CSI (Control Sequence Introducer) query functions for terminal capabilities
*/
package csi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// QueryTimeout is the default timeout for CSI queries
const QueryTimeout = 50 * time.Millisecond

// ErrTimeout is returned when the terminal does not answer before the deadline.
var ErrTimeout = errors.New("csi: no reply before deadline")

// Query writes seq to the controlling terminal in raw mode and reads the reply
// up to and including the first byte for which final returns true.
// Without a deadline on ctx, QueryTimeout applies.
func Query(ctx context.Context, seq string, final func(byte) bool) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
	}

	// Open controlling terminal
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("csi: open tty: %w", err)
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return "", fmt.Errorf("csi: raw mode: %w", err)
	}
	defer term.Restore(int(tty.Fd()), oldState)

	if _, err := tty.WriteString(seq); err != nil {
		return "", fmt.Errorf("csi: write query: %w", err)
	}

	type reply struct {
		s   string
		err error
	}
	replyChan := make(chan reply, 1)
	go func() {
		var sb strings.Builder
		buf := make([]byte, 64)
		for {
			n, err := tty.Read(buf)
			for _, b := range buf[:n] {
				sb.WriteByte(b)
				if final(b) {
					replyChan <- reply{s: sb.String()}
					return
				}
			}
			if err != nil {
				replyChan <- reply{s: sb.String(), err: err}
				return
			}
			if sb.Len() > 256 {
				replyChan <- reply{s: sb.String(), err: errors.New("csi: reply too long")}
				return
			}
		}
	}()

	select {
	case r := <-replyChan:
		return r.s, r.err
	case <-ctx.Done():
		// the deferred Close unblocks the reader goroutine
		return "", ErrTimeout
	}
}

// QueryDeviceAttributes sends Primary Device Attributes (DA1, CSI c) and
// returns the attribute list of the reply.
func QueryDeviceAttributes(ctx context.Context, passthrough bool) ([]int, error) {
	seq := "\x1b[c"
	if passthrough {
		seq = Passthrough(seq)
	}
	resp, err := Query(ctx, seq, func(b byte) bool { return b == 'c' })
	if err != nil {
		return nil, err
	}
	attrs, ok := ParseDeviceAttributes(resp)
	if !ok {
		return nil, fmt.Errorf("csi: malformed device attributes %q", resp)
	}
	return attrs, nil
}

// QueryCharacterCellSizeInPixels queries character cell size in pixels using CSI 16t
func QueryCharacterCellSizeInPixels(ctx context.Context, passthrough bool) (width, height int, err error) {
	seq := "\x1b[16t"
	if passthrough {
		seq = Passthrough(seq)
	}
	resp, err := Query(ctx, seq, func(b byte) bool { return b == 't' })
	if err != nil {
		return 0, 0, err
	}
	width, height, ok := ParseCellSize(resp)
	if !ok {
		return 0, 0, fmt.Errorf("csi: malformed cell size %q", resp)
	}
	return width, height, nil
}

// ParseDeviceAttributes parses a DA1 reply of the form CSI ? Ps ; Ps ... c.
func ParseDeviceAttributes(resp string) ([]int, bool) {
	start := strings.Index(resp, "\x1b[?")
	if start < 0 {
		return nil, false
	}
	body := resp[start+3:]
	end := strings.IndexByte(body, 'c')
	if end <= 0 {
		return nil, false
	}
	parts := strings.Split(body[:end], ";")
	attrs := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		attrs = append(attrs, n)
	}
	return attrs, true
}

// ParseCellSize parses a reply of the form CSI 6 ; height ; width t.
func ParseCellSize(resp string) (width, height int, ok bool) {
	start := strings.Index(resp, "\x1b[6;")
	if start < 0 {
		return 0, 0, false
	}
	body := resp[start+4:]
	end := strings.IndexByte(body, 't')
	if end < 0 {
		return 0, 0, false
	}
	parts := strings.Split(body[:end], ";")
	if len(parts) != 2 {
		return 0, 0, false
	}
	height, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	width, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// Passthrough wraps an escape sequence so tmux forwards it to the outer terminal.
func Passthrough(seq string) string {
	if !strings.HasPrefix(seq, "\x1b") {
		return seq
	}
	// tmux passthrough format: \ePtmux;\e{escaped_sequence}\e\\
	// All \e (ESC) characters in the sequence must be doubled
	return "\x1bPtmux;" + strings.ReplaceAll(seq, "\x1b", "\x1b\x1b") + "\x1b\\"
}
