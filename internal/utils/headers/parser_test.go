package headers

import (
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	in := []string{"user-agent: Bot", "Accept: text/html", "X-Token:  a:b  "}
	out, err := ParseHeaders(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := map[string]string{"User-Agent": "Bot", "Accept": "text/html", "X-Token": "a:b"}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParseHeadersRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"BadHeader", ": value", "Two Words: x"} {
		if _, err := ParseHeaders([]string{bad}); err == nil {
			t.Errorf("ParseHeaders(%q) should fail", bad)
		}
	}
}

func TestParseHeadersEmpty(t *testing.T) {
	out, err := ParseHeaders(nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("got %v, %v; want empty map", out, err)
	}
}
