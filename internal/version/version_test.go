package version

import "testing"

func TestUserAgent(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3"
	if got := UserAgent(); got != "pricefeed/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
	if got := String(); got != "1.2.3 (unknown) built unknown" {
		t.Errorf("String() = %q", got)
	}
}
