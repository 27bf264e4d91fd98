package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var english = Options{SentenceEnd: "."}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  string
	}{
		{
			name:  "image markup and alt text are dropped",
			input: "Look ![diagram-alt](http://img.example/pic.png) here",
			opts:  english,
			want:  "Look here",
		},
		{
			name:  "links keep their label",
			input: "Read [the docs](https://example.com/docs) now",
			opts:  english,
			want:  "Read the docs now",
		},
		{
			name:  "bare urls are removed",
			input: "Visit https://example.com/page?x=1 today",
			opts:  english,
			want:  "Visit today",
		},
		{
			name:  "bare url next to japanese text",
			input: "詳細はhttps://example.com/aを参照",
			opts:  DefaultOptions(),
			want:  "詳細はを参照",
		},
		{
			name:  "major heading gets a long pause",
			input: "# Title\nBody",
			opts:  english,
			want:  "Title. . Body",
		},
		{
			name:  "minor heading gets a short pause",
			input: "Intro\n### Sub\nText",
			opts:  english,
			want:  "Intro. Sub. Text",
		},
		{
			name:  "japanese heading punctuation",
			input: "導入\n## 見出し\n本文",
			opts:  DefaultOptions(),
			want:  "導入。 。 見出し。 。 本文",
		},
		{
			name:  "closing hashes are dropped",
			input: "## Section ##\nText",
			opts:  english,
			want:  "Section. . Text",
		},
		{
			name:  "emphasis keeps inner text",
			input: "This is **bold** and *italic* and __strong__ and _em_ and ~~gone~~",
			opts:  english,
			want:  "This is bold and italic and strong and em and gone",
		},
		{
			name:  "intra-word underscores survive",
			input: "call snake_case_name now",
			opts:  english,
			want:  "call snake_case_name now",
		},
		{
			name:  "fenced code is removed and inline code kept",
			input: "Before\n```go\nfmt.Println(1)\n```\nAfter `x := 1` done",
			opts:  english,
			want:  "Before. After x := 1 done",
		},
		{
			name:  "block quotes lose their markers",
			input: "> quoted line\n> second",
			opts:  english,
			want:  "quoted line\nsecond",
		},
		{
			name:  "list bullets are stripped",
			input: "- first\n* second\n1. third",
			opts:  english,
			want:  "first\nsecond\nthird",
		},
		{
			name:  "horizontal rules become one paragraph break",
			input: "One\n\n---\n\nTwo",
			opts:  english,
			want:  "One. Two",
		},
		{
			name:  "spaced horizontal rule",
			input: "One\n\n- - -\n\nTwo",
			opts:  english,
			want:  "One. Two",
		},
		{
			name:  "blank lines become a paragraph break",
			input: "Body line 1\n\nBody line 2",
			opts:  english,
			want:  "Body line 1. Body line 2",
		},
		{
			name:  "paragraph break after existing punctuation",
			input: "First.\n\nSecond",
			opts:  english,
			want:  "First. Second",
		},
		{
			name:  "heading followed by blank line keeps one long pause",
			input: "# Title\n\nBody",
			opts:  english,
			want:  "Title. . Body",
		},
		{
			name:  "long runs of periods are collapsed",
			input: "Wait.... what",
			opts:  english,
			want:  "Wait. . what",
		},
		{
			name:  "whitespace runs are collapsed and trimmed",
			input: "  a   b\t\tc  ",
			opts:  english,
			want:  "a b c",
		},
		{
			name:  "full width spaces count as whitespace",
			input: "前　　後",
			opts:  DefaultOptions(),
			want:  "前 後",
		},
		{
			name:  "nested emphasis",
			input: "**bold *nested* text**",
			opts:  english,
			want:  "bold nested text",
		},
		{
			name:  "link destination with parentheses",
			input: "See [the docs](http://example.com/x_(y)) now.",
			opts:  english,
			want:  "See the docs now.",
		},
		{
			name:  "link label with nested brackets",
			input: "Link [a [b] c](http://u) end",
			opts:  english,
			want:  "Link a [b] c end",
		},
		{
			name:  "escaped punctuation is unescaped",
			input: `2 \* 3 is \_six\_`,
			opts:  english,
			want:  "2 * 3 is _six_",
		},
		{
			name:  "indented text is kept",
			input: "Intro\n\n    pasted with indent\n\nOutro",
			opts:  english,
			want:  "Intro. pasted with indent. Outro",
		},
		{
			name:  "raw html is dropped",
			input: "Text <span>inline</span> more\n\n<div>\nblock\n</div>\n\nEnd",
			opts:  english,
			want:  "Text inline more. End",
		},
		{
			name:  "internationalized url is removed",
			input: "visit https://例え.jp/パス now",
			opts:  english,
			want:  "visit now",
		},
		{
			name:  "japanese text after a url keeps its full stop",
			input: "東京の記事https://ja.wikipedia.org/wiki/東京。次の文",
			opts:  DefaultOptions(),
			want:  "東京の記事。次の文",
		},
		{
			name:  "closing heading leaves no trailing pause",
			input: "Body\n\n## End",
			opts:  english,
			want:  "Body. . End",
		},
		{
			name:  "zero options fall back to a full stop",
			input: "a\n\nb",
			opts:  Options{},
			want:  "a. b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input, tt.opts))
		})
	}
}

func TestNormalizeImageLeavesNoTrace(t *testing.T) {
	got := Normalize("A ![chart-of-sales](https://cdn.example.com/chart.png) B", english)
	assert.NotContains(t, got, "chart-of-sales")
	assert.NotContains(t, got, "cdn.example.com")
	assert.NotContains(t, got, "![")
	assert.NotContains(t, got, "](")
}

func TestNormalizeLinkKeepsTextOnly(t *testing.T) {
	got := Normalize("see [release notes](https://example.org/notes) for more", english)
	assert.Contains(t, got, "release notes")
	assert.NotContains(t, got, "example.org")
}

func TestNormalizeIdempotentOnProse(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog.",
		"It rained. Then it stopped! Did it? Yes",
		"今日は晴れです。明日は雨でしょう。",
		"snake_case words and 3 * 4 math",
		"Wait... really",
		"**bold *nested* text**",
		"See [the docs](http://example.com/x_(y)) now.",
	}
	for _, in := range inputs {
		once := Normalize(in, english)
		assert.Equal(t, once, Normalize(once, english), "input %q", in)
	}
}

func TestNormalizeFilterIsOptional(t *testing.T) {
	input := "Home | Menu | Login\nThe article says share your thoughts.\nTags: go, tts\nBody"

	filtered := Normalize(input, Options{SentenceEnd: ".", StripBoilerplate: true})
	assert.Contains(t, filtered, "share your thoughts")
	assert.NotContains(t, filtered, "Menu")
	assert.NotContains(t, filtered, "Tags")

	unfiltered := Normalize(input, english)
	assert.Contains(t, unfiltered, "Menu")
}

func TestStripBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		line string
		drop bool
	}{
		{"pipe separated chrome", "Home | Menu | Login", true},
		{"space separated chrome", "Home Menu Log in", true},
		{"linked chrome", "[Home](/) / [Share](/share)", true},
		{"related heading", "## Related articles", true},
		{"taxonomy line", "Categories: Tech, Go", true},
		{"japanese chrome", "ホーム › メニュー", true},
		{"japanese taxonomy", "タグ：音声合成", true},
		{"breadcrumb with content", "ホーム > ニュース", false},
		{"prose mentioning share", "Please share this with friends.", false},
		{"prose mentioning menu", "The menu at the cafe was short.", false},
		{"empty line", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripBoilerplate("before\n" + tt.line + "\nafter")
			if tt.drop {
				assert.Equal(t, "before\nafter", got)
			} else {
				assert.Equal(t, "before\n"+tt.line+"\nafter", got)
			}
		})
	}
}

func TestForLanguage(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"ja-JP", "。"},
		{"ja", "。"},
		{"zh-Hans", "。"},
		{"en-US", "."},
		{"de", "."},
		{"not a tag!", "."},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ForLanguage(tt.tag).SentenceEnd)
		})
	}
}
