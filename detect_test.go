package huginn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blacktop/huginn/pkg/csi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

// fakeDetector returns a Detector on an interactive terminal that answers DA1
// with attrs and reports 10x20 pixel cells.
func fakeDetector(env map[string]string, attrs []int, err error) (*Detector, *int) {
	queries := 0
	logger, _ := memoryLogger()
	return &Detector{
		Timeout:     10 * time.Millisecond,
		Getenv:      mapEnv(env),
		Interactive: func() bool { return true },
		QueryAttributes: func(context.Context, bool) ([]int, error) {
			queries++
			return attrs, err
		},
		QueryCellSize: func(context.Context, bool) (int, int, error) {
			return 10, 20, nil
		},
		Logger: logger,
	}, &queries
}

func TestDetectProtocol(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected Protocol
	}{
		{name: "Kitty terminal via TERM", envVars: map[string]string{"TERM": "xterm-kitty"}, expected: Kitty},
		{name: "Kitty terminal via KITTY_WINDOW_ID", envVars: map[string]string{"KITTY_WINDOW_ID": "1"}, expected: Kitty},
		{name: "Ghostty", envVars: map[string]string{"TERM_PROGRAM": "ghostty"}, expected: Kitty},
		{name: "Konsole 23.08", envVars: map[string]string{"KONSOLE_VERSION": "230805"}, expected: Kitty},
		{name: "old Konsole", envVars: map[string]string{"KONSOLE_VERSION": "210401"}, expected: None},
		{name: "iTerm2 terminal", envVars: map[string]string{"TERM_PROGRAM": "iTerm.app"}, expected: ITerm2},
		{name: "iTerm2 over ssh", envVars: map[string]string{"LC_TERMINAL": "iTerm2"}, expected: ITerm2},
		{name: "WezTerm terminal", envVars: map[string]string{"TERM_PROGRAM": "WezTerm"}, expected: ITerm2},
		{name: "Mintty terminal", envVars: map[string]string{"TERM_PROGRAM": "mintty"}, expected: ITerm2},
		{name: "VSCode", envVars: map[string]string{"TERM_PROGRAM": "vscode", "TERM_PROGRAM_VERSION": "1.90.0"}, expected: ITerm2},
		{name: "foot", envVars: map[string]string{"TERM": "foot-extra"}, expected: Sixel},
		{name: "mlterm", envVars: map[string]string{"TERM": "mlterm"}, expected: Sixel},
		{name: "Contour ignores inherited Kitty variables", envVars: map[string]string{"TERM_PROGRAM": "contour", "KITTY_WINDOW_ID": "3"}, expected: Sixel},
		{name: "plain xterm", envVars: map[string]string{"TERM": "xterm-256color"}, expected: None},
		{name: "dumb", envVars: map[string]string{"TERM": "dumb", "KITTY_WINDOW_ID": "1"}, expected: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := fakeDetector(tt.envVars, []int{62, 22}, nil)
			assert.Equal(t, tt.expected, d.Detect(context.Background()))
		})
	}
}

func TestDetectNotInteractive(t *testing.T) {
	d, queries := fakeDetector(map[string]string{"KITTY_WINDOW_ID": "1"}, []int{62, 4}, nil)
	d.Interactive = func() bool { return false }

	term := d.Terminal(context.Background())
	assert.Equal(t, None, term.Protocol)
	assert.Zero(t, term.CellWidth)
	assert.Zero(t, *queries, "must not query a pipe")
}

func TestDetectDeviceAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs []int
		err   error
		want  Protocol
	}{
		{name: "sixel advertised", attrs: []int{62, 4, 22}, want: Sixel},
		{name: "no sixel", attrs: []int{62, 22}, want: None},
		{name: "timeout", err: csi.ErrTimeout, want: None},
		{name: "no tty", err: errors.New("open /dev/tty: no such device"), want: None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, queries := fakeDetector(map[string]string{"TERM": "xterm-256color"}, tt.attrs, tt.err)
			assert.Equal(t, tt.want, d.Detect(context.Background()))
			assert.Equal(t, 1, *queries)
		})
	}
}

func TestDetectQueryIsBounded(t *testing.T) {
	d, _ := fakeDetector(map[string]string{"TERM": "xterm"}, nil, nil)
	d.QueryAttributes = func(ctx context.Context, _ bool) ([]int, error) {
		<-ctx.Done()
		return nil, csi.ErrTimeout
	}

	start := time.Now()
	assert.Equal(t, None, d.Detect(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestDetectOverride(t *testing.T) {
	d, queries := fakeDetector(map[string]string{"KITTY_WINDOW_ID": "1"}, nil, nil)
	d.Override = "sixel"
	d.Interactive = func() bool { return false }
	assert.Equal(t, Sixel, d.Detect(context.Background()))
	assert.Zero(t, *queries)

	d, _ = fakeDetector(map[string]string{ProtocolEnv: "none", "KITTY_WINDOW_ID": "1"}, nil, nil)
	assert.Equal(t, None, d.Detect(context.Background()))

	d, _ = fakeDetector(map[string]string{ProtocolEnv: "auto", "KITTY_WINDOW_ID": "1"}, nil, nil)
	assert.Equal(t, Kitty, d.Detect(context.Background()))

	logger, h := memoryLogger()
	d, _ = fakeDetector(map[string]string{"TERM_PROGRAM": "iTerm.app"}, nil, nil)
	d.Override = "regis"
	d.Logger = logger
	assert.Equal(t, ITerm2, d.Detect(context.Background()))
	assert.Len(t, warnings(h), 1)
}

func TestTerminal(t *testing.T) {
	d, _ := fakeDetector(map[string]string{"KITTY_WINDOW_ID": "1", "TMUX": "/tmp/tmux"}, nil, nil)
	term := d.Terminal(context.Background())
	require.Equal(t, Kitty, term.Protocol)
	assert.Equal(t, 10, term.CellWidth)
	assert.Equal(t, 20, term.CellHeight)
	assert.True(t, term.Tmux)

	fp := term.Footprint(3, 2)
	assert.Equal(t, CellFootprint{Columns: 3, Rows: 2, CellWidth: 10, CellHeight: 20}, fp)

	d.QueryCellSize = func(context.Context, bool) (int, int, error) { return 0, 0, csi.ErrTimeout }
	term = d.Terminal(context.Background())
	assert.Equal(t, Kitty, term.Protocol)
	assert.Zero(t, term.CellWidth)
}

func TestForcedProtocolOnPipeSkipsCellQuery(t *testing.T) {
	d, queries := fakeDetector(map[string]string{}, nil, nil)
	d.Override = "kitty"
	d.Interactive = func() bool { return false }
	cellQueries := 0
	d.QueryCellSize = func(context.Context, bool) (int, int, error) {
		cellQueries++
		return 10, 20, nil
	}

	term := d.Terminal(context.Background())
	assert.Equal(t, Kitty, term.Protocol)
	assert.Zero(t, cellQueries, "must not query a pipe")
	assert.Zero(t, *queries)

	w, h := term.Footprint(2, 1).Cell()
	assert.Equal(t, DefaultCellWidth, w)
	assert.Equal(t, DefaultCellHeight, h)
}
