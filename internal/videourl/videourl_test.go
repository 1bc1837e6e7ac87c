package videourl

import "testing"

func TestSupported(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"standard watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"bare host", "https://youtube.com/watch?v=abc", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"mobile host", "https://m.youtube.com/watch?v=abc", true},
		{"music host", "https://music.youtube.com/watch?v=abc", true},
		{"http scheme", "http://www.youtube.com/watch?v=abc", true},
		{"uppercase host", "https://WWW.YOUTUBE.COM/watch?v=abc", true},
		{"host with port", "https://youtube.com:443/watch?v=abc", true},
		{"surrounding whitespace", "  https://youtu.be/abc  ", true},

		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"other platform", "https://vimeo.com/123456", false},
		{"subdomain spoof", "https://youtube.com.evil.example/watch", false},
		{"missing scheme", "www.youtube.com/watch?v=abc", false},
		{"ftp scheme", "ftp://youtube.com/watch?v=abc", false},
		{"not a url", "not a url at all", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Supported(tc.url); got != tc.want {
				t.Fatalf("Supported(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}
