package model

import "unicode/utf8"

const titleMaxRunes = 100

// VerifiedRecord 分类通过后落盘的记录。TweetID 统一保留在 schema 里，
// 台账去重、归档和上传都以它为准。
type VerifiedRecord struct {
	TweetID            string `json:"tweet_id"`
	Title              string `json:"title"`
	Content            string `json:"content"`
	PublishedDate      string `json:"published_date"`
	URL                string `json:"url"`
	Source             string `json:"source"`
	FireRelatedScore   Score  `json:"fire_related_score"`
	VerificationResult string `json:"verification_result"`
	VerifiedAt         string `json:"verified_at"`
}

// MakeTitle 标题 = 正文截断到 100 字符，超长加省略号
func MakeTitle(text string) string {
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleMaxRunes]) + "..."
}
