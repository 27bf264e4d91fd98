package normalize

import (
	"regexp"
	"strings"
)

// navigationWords is the site-chrome vocabulary. Entries are lower case and
// matched against whole tokens only.
var navigationWords = map[string]bool{
	"home": true, "menu": true, "login": true, "log in": true, "logout": true,
	"log out": true, "sign in": true, "sign up": true, "register": true,
	"search": true, "share": true, "tweet": true, "facebook": true,
	"twitter": true, "hatena": true, "pocket": true,
	"related articles": true, "related posts": true, "related": true,
	"category": true, "categories": true, "tag": true, "tags": true,
	"next": true, "previous": true, "prev": true, "back to top": true,
	"skip to content": true, "subscribe": true, "print": true, "copy link": true,

	"ホーム": true, "トップ": true, "メニュー": true, "ログイン": true,
	"ログアウト": true, "新規登録": true, "検索": true, "シェア": true,
	"ツイート": true, "はてブ": true, "関連記事": true, "カテゴリー": true,
	"カテゴリ": true, "タグ": true, "次へ": true, "前へ": true,
	"トップへ戻る": true, "このページの先頭へ": true,
}

var (
	linkPattern         = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	navSeparatorPattern = regexp.MustCompile(`[|/·•>»›,、\t]+|\s{2,}`)
	taxonomyLinePattern = regexp.MustCompile(`(?i)^\s*(?:categor(?:y|ies)|tags?|カテゴリー?|タグ)\s*[:：]`)
)

// StripBoilerplate removes lines made up entirely of navigation vocabulary,
// such as "Home | Menu | Login" or "Tags: go, tts". A navigation word inside
// an ordinary sentence leaves the line untouched.
func StripBoilerplate(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isNavigationLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isNavigationLine(line string) bool {
	visible := linkPattern.ReplaceAllString(line, "$1")
	visible = strings.TrimSpace(visible)
	if visible == "" {
		return false
	}
	if taxonomyLinePattern.MatchString(visible) {
		return true
	}

	tokens := navSeparatorPattern.Split(visible, -1)
	seen := 0
	for _, tok := range tokens {
		tok = strings.ToLower(strings.Trim(tok, " *_#[]()"))
		if tok == "" {
			continue
		}
		if !navigationWords[tok] && !segmentable(strings.Fields(tok)) {
			return false
		}
		seen++
	}
	return seen > 0
}

// segmentable reports whether words splits into navigation phrases of up to
// three words each, as in "home menu log in".
func segmentable(words []string) bool {
	if len(words) == 0 {
		return false
	}
	ok := make([]bool, len(words)+1)
	ok[0] = true
	for end := 1; end <= len(words); end++ {
		for size := 1; size <= 3 && size <= end; size++ {
			if ok[end-size] && navigationWords[strings.Join(words[end-size:end], " ")] {
				ok[end] = true
				break
			}
		}
	}
	return ok[len(words)]
}
