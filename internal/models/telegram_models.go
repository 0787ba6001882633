package models

// TelegramMessage is a post scraped from a public channel preview page.
type TelegramMessage struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}
