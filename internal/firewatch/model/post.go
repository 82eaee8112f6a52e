package model

// Author 推文作者信息（仅保留需要的字段）
type Author struct {
	UserName string `json:"userName"`
}

// Post 从搜索接口拉回的单条原始推文
type Post struct {
	ID             string `json:"id"`
	Type           string `json:"type,omitempty"` // "tweet" 或其他（广告、回复卡片等）
	Text           string `json:"text"`
	CreatedAt      string `json:"createdAt"` // 原始时间串，解析交给 timeutil
	URL            string `json:"url"`
	Author         Author `json:"author"`
	Lang           string `json:"lang,omitempty"`
	IsReply        bool   `json:"isReply,omitempty"`
	InReplyToID    string `json:"inReplyToId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	LikeCount      int    `json:"likeCount,omitempty"`
	RetweetCount   int    `json:"retweetCount,omitempty"`
	ReplyCount     int    `json:"replyCount,omitempty"`
	ViewCount      int    `json:"viewCount,omitempty"`
}
