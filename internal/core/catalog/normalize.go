package catalog

import (
	"regexp"
	"strings"
)

var punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeText 將自由文字轉為標準化描述：小寫、去標點、空白壓縮
// 查詢詞與目錄描述必須經過同一套標準化，比對才有意義
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = punctuationPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
