package wordlebot

import (
	"sort"
	"strconv"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const entityTextMention = "text_mention"

// mentionText returns the text of msg with every text_mention entity (a
// mention of a user without a username) replaced by "<@id>". Entity offsets
// count UTF-16 code units.
func mentionText(msg *tgbotapi.Message) string {
	if msg.Entities == nil {
		return msg.Text
	}

	var mentions []tgbotapi.MessageEntity
	for _, e := range *msg.Entities {
		if e.Type == entityTextMention && e.User != nil {
			mentions = append(mentions, e)
		}
	}
	if len(mentions) == 0 {
		return msg.Text
	}

	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].Offset > mentions[j].Offset
	})

	units := utf16.Encode([]rune(msg.Text))
	for _, e := range mentions {
		end := e.Offset + e.Length
		if e.Offset < 0 || e.Length <= 0 || end > len(units) {
			continue
		}

		repl := utf16.Encode([]rune("<@" + strconv.Itoa(e.User.ID) + ">"))
		next := make([]uint16, 0, len(units)-e.Length+len(repl))
		next = append(next, units[:e.Offset]...)
		next = append(next, repl...)
		next = append(next, units[end:]...)
		units = next
	}

	return string(utf16.Decode(units))
}
