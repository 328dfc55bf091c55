package huginn

import (
	"strconv"
	"strings"
)

// Protocol is the inline image protocol accepted by the active terminal.
// It is computed once per run and never changes afterwards.
type Protocol int

const (
	// None means no graphics; the caller renders text only.
	None Protocol = iota
	// Sixel is the DEC Sixel palette protocol.
	Sixel
	// Kitty is the Kitty graphics protocol.
	Kitty
	// ITerm2 is the iTerm2 inline images protocol.
	ITerm2
)

var protocolNames = [...]string{
	None:   "none",
	Sixel:  "sixel",
	Kitty:  "kitty",
	ITerm2: "iterm2",
}

func (p Protocol) String() string {
	if p < 0 || int(p) >= len(protocolNames) {
		return "Protocol(" + strconv.Itoa(int(p)) + ")"
	}
	return protocolNames[p]
}

// ParseProtocol maps an override string to a Protocol.
// "auto" and the empty string report ok=false so that detection proceeds.
func ParseProtocol(s string) (Protocol, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kitty":
		return Kitty, true
	case "sixel":
		return Sixel, true
	case "iterm2", "iterm", "iterm.app":
		return ITerm2, true
	case "none", "off", "text":
		return None, true
	default:
		return None, false
	}
}
