package proc

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/keycodec"
)

var namedKeySpecs = map[string]keycodec.Code{
	"Enter":     keycodec.Enter,
	"Tab":       keycodec.Tab,
	"BackTab":   keycodec.BackTab,
	"Escape":    keycodec.Escape,
	"Backspace": keycodec.Backspace,
	"Delete":    keycodec.Delete,
	"Insert":    keycodec.Insert,
	"Home":      keycodec.Home,
	"End":       keycodec.End,
	"PageUp":    keycodec.PageUp,
	"PageDown":  keycodec.PageDown,
	"Up":        keycodec.Up,
	"Down":      keycodec.Down,
	"Left":      keycodec.Left,
	"Right":     keycodec.Right,
}

// ParseKeySpec decodes the literal key notation used both in a stop:
// {send-keys: [...]} list and in the remote-control send-key command
// ("C-c", "M-x", "q", "Enter") into a KeyEvent.
func ParseKeySpec(spec config.KeySpec) (keycodec.KeyEvent, bool) {
	return parseKeySpec(spec)
}

func parseKeySpec(spec config.KeySpec) (keycodec.KeyEvent, bool) {
	s := string(spec)
	var mods keycodec.Mods

	for {
		switch {
		case strings.HasPrefix(s, "C-"):
			mods |= keycodec.Ctrl
			s = s[2:]
		case strings.HasPrefix(s, "M-"):
			mods |= keycodec.Alt
			s = s[2:]
		case strings.HasPrefix(s, "S-"):
			mods |= keycodec.Shift
			s = s[2:]
		default:
			goto decoded
		}
	}

decoded:
	if code, ok := namedKeySpecs[s]; ok {
		return keycodec.KeyEvent{Code: code, Mods: mods}, true
	}

	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return keycodec.KeyEvent{}, false
	}
	return keycodec.KeyEvent{Code: keycodec.Char, Rune: r, Mods: mods}, true
}
