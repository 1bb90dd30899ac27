package sdkgen

import "testing"

func TestCleanSource(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare source untouched",
			raw:  "package main\n\nfunc main() {}",
			want: "package main\n\nfunc main() {}",
		},
		{
			name: "fenced with language tag",
			raw:  "```go\npackage main\n```",
			want: "package main",
		},
		{
			name: "fenced without language tag",
			raw:  "```\nprint('hola')\n```",
			want: "print('hola')",
		},
		{
			name: "surrounding whitespace",
			raw:  "\n\n  ```python\nimport requests\n```  \n",
			want: "import requests",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanSource(tc.raw); got != tc.want {
				t.Fatalf("cleanSource(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
