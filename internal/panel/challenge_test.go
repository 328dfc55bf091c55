package panel

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestTotalDays(t *testing.T) {
	tests := []struct {
		c    Challenge
		want int
	}{
		{Challenge{Years: 2}, 730},
		{Challenge{Months: 6}, 183},
		{Challenge{Years: 1, Months: 1}, 395},
		{Challenge{}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.TotalDays(), "%+v", tt.c)
	}
}

func TestStatus(t *testing.T) {
	installed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Challenge{Years: 2}

	s := c.Status(installed, installed.AddDate(0, 0, 365))
	assert.Equal(t, 365, s.AgeDays)
	assert.Equal(t, 50, s.Percent)
	assert.False(t, s.Complete())
	assert.Equal(t, 365*24*time.Hour, s.Remaining)

	s = c.Status(installed, installed.AddDate(3, 0, 0))
	assert.Equal(t, 100, s.Percent)
	assert.True(t, s.Complete())

	s = Challenge{}.Status(installed, installed.Add(time.Hour))
	assert.Equal(t, 100, s.Percent)
	assert.True(t, s.Complete())
}

func TestStatusLines(t *testing.T) {
	installed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	lines := Challenge{Years: 1}.Status(installed, installed.AddDate(0, 0, 100).Add(-5*time.Hour)).Lines()
	plain := ansi.Strip(strings.Join(lines, "\n"))
	assert.Contains(t, plain, "Installed • 2024-01-01")
	assert.Contains(t, plain, "Current Age • 99 days")
	assert.Contains(t, plain, "Time Left • 265 days, 5 hours")
	assert.Contains(t, plain, " 27% ")

	lines = Challenge{Months: 1}.Status(installed, installed.AddDate(0, 2, 0)).Lines()
	plain = ansi.Strip(strings.Join(lines, "\n"))
	assert.Contains(t, plain, "Challenge Complete!")
	assert.Contains(t, plain, "100% ")
}
