package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
		"  https://example.com/padded  ",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///", "not a url", ""}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://h.example/p", "/a.png", "https://h.example/a.png"},
		{"https://h.example/dir/p", "b.png", "https://h.example/dir/b.png"},
		{"https://h.example/p", "https://cdn.example/x.png", "https://cdn.example/x.png"},
		{"not absolute", "/a.png", "/a.png"},
		{"https://h.example/p", "%zz", "%zz"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestResolveWithoutFragment(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://h.example/p", "/b#frag", "https://h.example/b"},
		{"https://h.example/p", "#top", "https://h.example/p"},
		{"https://h.example/p", "https://o.example/x?q=1#y", "https://o.example/x?q=1"},
		{"https://h.example/p", "%zz", "%zz"},
	}
	for _, tt := range tests {
		if got := ResolveWithoutFragment(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveWithoutFragment(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestParseAbsolute(t *testing.T) {
	if _, err := ParseAbsolute("https://docs.example/Guide"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, raw := range []string{"/Guide", "mailto:", "javascript:void(0)", "://bad"} {
		if _, err := ParseAbsolute(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://docs.example/Guide#intro", "https://docs.example/Guide"},
		{"https://docs.example", "https://docs.example/"},
		{"HTTPS://Docs.Example/Guide", "https://docs.example/Guide"},
		{"https://docs.example:443/a", "https://docs.example/a"},
		{"http://docs.example:80", "http://docs.example/"},
		{"https://docs.example:8443/a", "https://docs.example:8443/a"},
		{"https://docs.example/a?q=1#x", "https://docs.example/a?q=1"},
		{"%zz", "%zz"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
