package browser

import (
	"errors"
	"testing"
)

func stubStart(t *testing.T, err error) *[]string {
	t.Helper()
	var got []string
	orig := start
	start = func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return err
	}
	t.Cleanup(func() { start = orig })
	return &got
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	stubStart(t, nil)

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error: %v", tt.url, err)
		}
	}
}

func TestOpenPassesURL(t *testing.T) {
	got := stubStart(t, nil)
	if err := Open("https://example.com/post?id=1"); err != nil {
		t.Fatal(err)
	}
	if n := len(*got); n == 0 || (*got)[n-1] != "https://example.com/post?id=1" {
		t.Errorf("command = %v", *got)
	}
}

func TestOpenLaunchFailure(t *testing.T) {
	stubStart(t, errors.New("no browser"))
	if err := Open("https://example.com"); err == nil {
		t.Error("expected launch error")
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		wsl  bool
		want string
	}{
		{"darwin", false, "open"},
		{"windows", false, "rundll32"},
		{"linux", false, "xdg-open"},
		{"linux", true, "rundll32.exe"},
		{"freebsd", false, "xdg-open"},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, tt.wsl, "https://x.test")
		if name != tt.want {
			t.Errorf("command(%s, wsl=%v) = %s, want %s", tt.goos, tt.wsl, name, tt.want)
		}
		if args[len(args)-1] != "https://x.test" {
			t.Errorf("command(%s) args = %v", tt.goos, args)
		}
	}
}
