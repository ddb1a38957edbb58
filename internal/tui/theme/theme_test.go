package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByNameFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "tokyo-night", ByName("tokyo-night").Name)
	assert.Equal(t, FlexokiDark.Name, ByName("no-such-theme").Name)
}

func TestKnownAndNames(t *testing.T) {
	assert.True(t, Known("terminal"))
	assert.False(t, Known("solarized"))
	assert.Equal(t, []string{"flexoki-dark", "catppuccin-mocha", "tokyo-night", "terminal"}, Names())
}

func TestSigned(t *testing.T) {
	th := FlexokiDark
	assert.Equal(t, th.GreenBright, th.Signed(160))
	assert.Equal(t, th.Red, th.Signed(-160))
	assert.Equal(t, th.TextMuted, th.Signed(0))
}
