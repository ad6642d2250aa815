package model

import "time"

// Message is a captured group message that looked like a daily summary.
type Message struct {
	ChatID    int64  `json:"chatId"`
	MessageID int    `json:"messageId"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

func (m Message) Time(loc *time.Location) time.Time {
	return time.Unix(m.Date, 0).In(loc)
}
