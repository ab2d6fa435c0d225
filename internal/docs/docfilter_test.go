package docs

import "testing"

func TestHideCodeBlockLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "hidden setup lines removed from rust blocks",
			in:   "Example:\n```\n# setup();\n#[derive(Debug)]\nvisible();\n```",
			want: "Example:\n```rust\n#[derive(Debug)]\nvisible();\n```",
		},
		{
			name: "labeled rust fence normalized",
			in:   "```rust\n# hidden();\nshown();\n```",
			want: "```rust\nshown();\n```",
		},
		{
			name: "fence attributes dropped",
			in:   "```rust should_panic\n# hidden();\nshown();\n```",
			want: "```rust\nshown();\n```",
		},
		{
			name: "other languages pass through verbatim",
			in:   "```text\n# not hidden\nplain\n```",
			want: "```text\n# not hidden\nplain\n```",
		},
		{
			name: "headings outside blocks untouched",
			in:   "# Heading\n\nbody\n\n```\n# hidden();\n```",
			want: "# Heading\n\nbody\n\n```rust\n```",
		},
		{
			name: "blank lines inside blocks kept",
			in:   "```\nlet a = 1;\n\nlet b = 2;\n```",
			want: "```rust\nlet a = 1;\n\nlet b = 2;\n```",
		},
		{
			name: "consecutive blocks",
			in:   "```\n# a();\nb();\n```\ntext\n```python\n# kept\n```",
			want: "```rust\nb();\n```\ntext\n```python\n# kept\n```",
		},
		{
			name: "no blocks",
			in:   "just text\nwith # hashes",
			want: "just text\nwith # hashes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HideCodeBlockLines(tt.in); got != tt.want {
				t.Errorf("HideCodeBlockLines:\ngot  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestCaption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "first line", in: "Summary line.\n\nDetails.", want: "Summary line."},
		{name: "leading blanks skipped", in: "\n   \nSummary line.", want: "Summary line."},
		{name: "whitespace preserved", in: "  indented summary", want: "  indented summary"},
		{name: "empty docs", in: "", want: ""},
		{name: "only blanks", in: "\n \n\t\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Caption(tt.in); got != tt.want {
				t.Errorf("Caption(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
