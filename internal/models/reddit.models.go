package models

import "time"

type RedditPost struct {
	Subreddit   string    `json:"subreddit"`
	PostTitle   string    `json:"post_title"`
	PostContent string    `json:"post_content"`
	CreatedAt   time.Time `json:"created_at"`
	PostID      string    `json:"id"`
}

// Confession prefers the self text and falls back to the title for link or
// title-only posts.
func (p RedditPost) Confession() Confession {
	if p.PostContent != "" {
		return p.PostContent
	}
	return p.PostTitle
}

type RedditAPIResponse struct {
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Data RedditAPIChildData `json:"data"`
}

type RedditAPIChildData struct {
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	CreatedUTC float64 `json:"created_utc"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
}

func (d RedditAPIChildData) ToPost() RedditPost {
	return RedditPost{
		Subreddit:   d.Subreddit,
		PostTitle:   d.Title,
		PostContent: d.Selftext,
		CreatedAt:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
		PostID:      d.ID,
	}
}
