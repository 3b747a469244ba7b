package keycodec

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	keys := []KeyEvent{
		{Code: Up},
		{Code: Down},
		{Code: Left},
		{Code: Right},
		{Code: Home},
		{Code: End},
		{Code: PageUp},
		{Code: PageDown},
		{Code: Insert},
		{Code: Delete},
		{Code: F, N: 1},
		{Code: F, N: 5},
		{Code: Char, Rune: 'a'},
		{Code: Char, Rune: 'Z'},
	}

	for _, k := range keys {
		seq := EncodeVterm(k)
		if len(seq) == 0 {
			t.Errorf("%v: empty encoding", k)
			continue
		}

		got, n, ok := Decode(seq)
		if !ok {
			t.Errorf("%v: decode failed on %q", k, seq)
			continue
		}
		if n != len(seq) {
			t.Errorf("%v: consumed %d of %d bytes", k, n, len(seq))
		}
		ge, isKey := got.(KeyEvent)
		if !isKey {
			t.Errorf("%v: decoded non-key event %#v", k, got)
			continue
		}
		if ge.Code != k.Code || (k.Code == F && ge.N != k.N) || (k.Code == Char && ge.Rune != k.Rune) {
			t.Errorf("round trip mismatch: sent %v, got %v", k, ge)
		}
	}
}

func TestEncodeSimpleRestrictsKeys(t *testing.T) {
	if got := EncodeSimple(KeyEvent{Code: Up}); got != nil {
		t.Errorf("expected nil for Up on simple target, got %q", got)
	}
	if got := EncodeSimple(KeyEvent{Code: Enter}); string(got) != "\n" {
		t.Errorf("expected newline for Enter, got %q", got)
	}
	if got := EncodeSimple(KeyEvent{Code: Char, Rune: 'x'}); string(got) != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}
}

func TestEncodeMouseSGR(t *testing.T) {
	ev := MouseEvent{Kind: MousePress, Button: MouseLeft, Col: 4, Row: 9}
	seq := EncodeMouse(ev, true)
	if string(seq) != "\x1b[<0;5;10M" {
		t.Errorf("unexpected SGR mouse encoding: %q", seq)
	}

	got, n, ok := Decode(seq)
	if !ok || n != len(seq) {
		t.Fatalf("decode failed: ok=%v n=%d", ok, n)
	}
	me, isMouse := got.(MouseEvent)
	if !isMouse {
		t.Fatalf("expected MouseEvent, got %#v", got)
	}
	if me.Col != 4 || me.Row != 9 || me.Button != MouseLeft || me.Kind != MousePress {
		t.Errorf("round trip mismatch: %#v", me)
	}
}

func TestEncodeCtrlChar(t *testing.T) {
	seq := EncodeVterm(KeyEvent{Code: Char, Rune: 'c', Mods: Ctrl})
	if string(seq) != "\x03" {
		t.Errorf("expected Ctrl-C = 0x03, got %q", seq)
	}
}
