package wordlebot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

// allowedChat keeps the bot to its configured group. Private chats are always
// served so players can ask for their card directly.
func (m *Manager) allowedChat(chat *tgbotapi.Chat) bool {
	if chat == nil {
		return false
	}
	if chat.IsPrivate() || m.config.ChatID == 0 {
		return true
	}
	return chat.ID == m.config.ChatID
}

func isGroup(chat *tgbotapi.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}
