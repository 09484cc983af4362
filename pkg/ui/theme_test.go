package ui

import "testing"

func TestThemeFade(t *testing.T) {
	th := DarkTheme
	if got := th.Fade(th.Accent, 1); got != th.Accent {
		t.Errorf("full opacity = %s, want %s", got, th.Accent)
	}
	if got := th.Fade(th.Accent, 0); got != th.Background {
		t.Errorf("zero opacity = %s, want background", got)
	}
	mid := th.Fade(th.Accent, 0.5)
	if mid == th.Accent || mid == th.Background {
		t.Errorf("half opacity = %s, want a blend", mid)
	}
	if got := th.Fade("not-a-color", 0.5); got != "not-a-color" {
		t.Errorf("invalid color = %s, want passthrough", got)
	}
}
