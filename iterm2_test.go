package huginn

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// parseITerm2 splits an OSC 1337 sequence into its parameters and payload.
func parseITerm2(t *testing.T, data []byte) (map[string]string, []byte) {
	t.Helper()
	s := string(data)
	require.True(t, strings.HasPrefix(s, "\x1b]1337;File="), "missing OSC 1337 prefix")
	require.True(t, strings.HasSuffix(s, "\x07"), "missing BEL terminator")
	body := strings.TrimSuffix(strings.TrimPrefix(s, "\x1b]1337;File="), "\x07")

	head, payload, ok := strings.Cut(body, ":")
	require.True(t, ok, "missing payload separator")

	params := make(map[string]string)
	for kv := range strings.SplitSeq(head, ";") {
		k, v, _ := strings.Cut(kv, "=")
		params[k] = v
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	return params, raw
}

func TestITerm2PNGRoundTrip(t *testing.T) {
	r := gradientRaster(12, 9)
	fp := CellFootprint{Columns: 3, Rows: 1, CellWidth: 4, CellHeight: 9}

	enc, err := EncodeITerm2(r, fp, ITerm2Options{})
	require.NoError(t, err)
	assert.Equal(t, ITerm2, enc.Protocol)

	params, raw := parseITerm2(t, enc.Data)
	assert.Equal(t, "1", params["inline"])
	assert.Equal(t, strconv.Itoa(len(raw)), params["size"])
	assert.Equal(t, "3", params["width"])
	assert.Equal(t, "1", params["height"])
	assert.Equal(t, "0", params["preserveAspectRatio"])
	assert.Equal(t, "1", params["doNotMoveCursor"])

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	got := NewRaster(img)
	require.Equal(t, r.Width(), got.Width())
	require.Equal(t, r.Height(), got.Height())
	assert.Equal(t, r.Pix(), got.Pix())
}

func TestITerm2BMPContainer(t *testing.T) {
	r := solidRaster(5, 4, color.NRGBA{R: 10, G: 200, B: 30, A: 255})

	enc, err := EncodeITerm2(r, CellFootprint{}, ITerm2Options{Container: ContainerBMP})
	require.NoError(t, err)

	params, raw := parseITerm2(t, enc.Data)
	assert.Equal(t, "5px", params["width"])
	assert.Equal(t, "4px", params["height"])

	img, err := bmp.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	got := NewRaster(img)
	assert.Equal(t, color.NRGBA{R: 10, G: 200, B: 30, A: 255}, got.At(2, 2))
}

func TestITerm2Rejects(t *testing.T) {
	_, err := EncodeITerm2(nil, CellFootprint{}, ITerm2Options{})
	var eerr *EncodeError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ITerm2, eerr.Protocol)

	_, err = EncodeITerm2(solidRaster(1449, 1449, color.NRGBA{R: 1, G: 2, B: 3, A: 255}), CellFootprint{}, ITerm2Options{})
	assert.ErrorAs(t, err, &eerr)
}
