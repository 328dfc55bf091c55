package huginn

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var graphicsIntroducers = []string{"\x1bP", "\x1b_G", "\x1b]1337"}

func assertNoGraphics(t *testing.T, out string) {
	t.Helper()
	for _, seq := range graphicsIntroducers {
		assert.NotContains(t, out, seq)
	}
}

func TestComposeTextOnly(t *testing.T) {
	panel := TextPanel{Lines: []string{"user@host", "Kernel • 6.9"}}

	for _, enc := range []*EncodedImage{
		nil,
		{Protocol: None},
		{Protocol: Kitty, Footprint: CellFootprint{Columns: 4, Rows: 2}},
	} {
		var buf bytes.Buffer
		require.NoError(t, Compose(&buf, enc, panel, ComposeOptions{}))
		assert.Equal(t, "user@host\nKernel • 6.9\n", buf.String())
		assertNoGraphics(t, buf.String())
	}
}

func TestComposeImageLayout(t *testing.T) {
	enc := &EncodedImage{
		Protocol:  Kitty,
		Footprint: CellFootprint{Columns: 10, Rows: 3},
		Data:      []byte("\x1b_Ga=T;AAAA\x1b\\"),
	}
	panel := TextPanel{Lines: []string{"one", "two"}}

	var buf bytes.Buffer
	require.NoError(t, Compose(&buf, enc, panel, ComposeOptions{Gap: 3}))

	want := "\n\n\n\x1b[3A" +
		"\x1b7\x1b_Ga=T;AAAA\x1b\\\x1b8" +
		"\r\x1b[13Cone\n" +
		"\r\x1b[13Ctwo\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestComposePanelTallerThanImage(t *testing.T) {
	enc := &EncodedImage{
		Protocol:  Sixel,
		Footprint: CellFootprint{Columns: 2, Rows: 1},
		Data:      []byte("\x1bPq\x1b\\"),
	}
	panel := TextPanel{Lines: []string{"a", "b", "c"}}

	var buf bytes.Buffer
	require.NoError(t, Compose(&buf, enc, panel, ComposeOptions{}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\n\n\n\x1b[3A\x1b7"))
	// Every panel line starts right of the image and the gap.
	assert.Equal(t, 3, strings.Count(out, "\r\x1b[4C"))
	assert.True(t, strings.HasSuffix(out, "c\n"))
}

func TestComposeFallbackColumns(t *testing.T) {
	panel := TextPanel{Lines: []string{"first", "second", "third"}}
	opts := ComposeOptions{Gap: 1, Fallback: []string{"/\\", "\x1b[31m||||\x1b[0m"}}

	var buf bytes.Buffer
	require.NoError(t, Compose(&buf, nil, panel, opts))

	want := "/\\   first\n" +
		"\x1b[31m||||\x1b[0m second\n" +
		"     third\n"
	assert.Equal(t, want, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestComposeWriteError(t *testing.T) {
	err := Compose(failingWriter{}, nil, TextPanel{Lines: []string{"x"}}, ComposeOptions{})
	assert.Error(t, err)
}
