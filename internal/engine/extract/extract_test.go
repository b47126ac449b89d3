package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestMainContent(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    []string
		notWant []string
	}{
		{
			name: "article preferred over body",
			html: `<html><body><nav>menu</nav><article><h1>Doc</h1><script>x()</script><p>text</p></article><p>outside</p></body></html>`,
			want:    []string{"<h1>Doc</h1>", "<p>text</p>"},
			notWant: []string{"outside", "menu", "<script>", "<article>"},
		},
		{
			name:    "first container in document order",
			html:    `<body><main><p>main first</p></main><article><p>article second</p></article></body>`,
			want:    []string{"main first"},
			notWant: []string{"article second"},
		},
		{
			name:    "body fallback strips chrome",
			html:    `<body><header>h</header><p>body</p><aside>a</aside><footer>f</footer><style>p{}</style></body>`,
			want:    []string{"<p>body</p>"},
			notWant: []string{"<header>", "<aside>", "<footer>", "<style>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MainContentHTML(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("expected %q in %q", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("did not expect %q in %q", nw, got)
				}
			}
		})
	}
}

func TestMainContentLeavesDocumentIntact(t *testing.T) {
	doc, err := Parse(`<body><main><nav>n</nav><p>p</p></main></body>`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := MainContent(doc); err != nil {
		t.Fatal(err)
	}
	if doc.Find("nav").Length() != 1 {
		t.Fatalf("expected nav to remain in the source document")
	}
}

func TestTitle(t *testing.T) {
	doc, _ := Parse(`<html><head><title>  Home  </title></head><body></body></html>`)
	if got := Title(doc); got != "Home" {
		t.Fatalf("expected trimmed title, got %q", got)
	}
}

func TestLinks(t *testing.T) {
	doc, _ := Parse(`<body>
		<a href="/Guide">g</a>
		<a>no href</a>
		<a href="https://other.example/X">x</a>
		<a href="/Guide">dup</a>
		<a href="faq#top">faq</a>
	</body>`)

	got := Links(doc, "https://docs.example/Home")
	want := []string{
		"https://docs.example/Guide",
		"https://other.example/X",
		"https://docs.example/Guide",
		"https://docs.example/faq#top",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links:\n got %#v\nwant %#v", got, want)
	}
}

func TestLinksHonorBaseElement(t *testing.T) {
	doc, _ := Parse(`<html><head><base href="https://docs.example/v2/"></head><body><a href="intro">i</a></body></html>`)
	got := Links(doc, "https://docs.example/Home")
	if len(got) != 1 || got[0] != "https://docs.example/v2/intro" {
		t.Fatalf("unexpected links: %#v", got)
	}
}
