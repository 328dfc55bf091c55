package csi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDeviceAttributes(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want []int
		ok   bool
	}{
		{name: "xterm with sixel", resp: "\x1b[?63;1;2;4;6;9;15;22c", want: []int{63, 1, 2, 4, 6, 9, 15, 22}, ok: true},
		{name: "vt100", resp: "\x1b[?1;2c", want: []int{1, 2}, ok: true},
		{name: "leading noise", resp: "junk\x1b[?62;4c", want: []int{62, 4}, ok: true},
		{name: "empty attributes", resp: "\x1b[?c"},
		{name: "not a reply", resp: "\x1b[6;20;10t"},
		{name: "garbage attribute", resp: "\x1b[?62;x;4c"},
		{name: "unterminated", resp: "\x1b[?62;4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDeviceAttributes(tt.resp)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCellSize(t *testing.T) {
	tests := []struct {
		name          string
		resp          string
		width, height int
		ok            bool
	}{
		{name: "valid", resp: "\x1b[6;20;10t", width: 10, height: 20, ok: true},
		{name: "zero", resp: "\x1b[6;0;0t"},
		{name: "wrong report", resp: "\x1b[4;800;1200t"},
		{name: "missing field", resp: "\x1b[6;20t"},
		{name: "non numeric", resp: "\x1b[6;a;10t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := ParseCellSize(tt.resp)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestPassthrough(t *testing.T) {
	assert.Equal(t, "\x1bPtmux;\x1b\x1b[c\x1b\\", Passthrough("\x1b[c"))
	assert.Equal(t, "plain", Passthrough("plain"))
}
