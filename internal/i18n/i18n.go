// Package i18n holds the user-facing strings of the client and their
// translations, registered on an x/text catalog.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	StatusOnline      = "status.online"
	StatusOffline     = "status.offline"
	ConnectionError   = "notify.connection_error"
	UnexpectedError   = "notify.unexpected_error"
	NetworkError      = "notify.network_error"
	TaskDeleteConfirm = "task.delete_confirm"
	TaskCreated       = "task.created"
	TaskStatusUpdated = "task.status_updated"
	TaskDeleted       = "task.deleted"
	RoomJoined        = "chat.room_joined"
)

// supported lists the catalog locales; the first entry is the default.
var supported = []language.Tag{language.English, language.Russian} //nolint:gochecknoglobals // static

var translations = map[language.Tag]map[string]string{ //nolint:gochecknoglobals // static catalog source
	language.English: {
		StatusOnline:      "Online",
		StatusOffline:     "Offline",
		ConnectionError:   "Connection error",
		UnexpectedError:   "An error occurred. Try reloading the page.",
		NetworkError:      "A network error occurred. Check your connection.",
		TaskDeleteConfirm: "Delete task %s?",
		TaskCreated:       "Task created: %s",
		TaskStatusUpdated: "Task %s is now %s",
		TaskDeleted:       "Task %s deleted",
		RoomJoined:        "Joined room %s",
	},
	language.Russian: {
		StatusOnline:      "Онлайн",
		StatusOffline:     "Офлайн",
		ConnectionError:   "Ошибка соединения",
		UnexpectedError:   "Произошла ошибка. Попробуйте обновить страницу.",
		NetworkError:      "Произошла ошибка сети. Проверьте соединение.",
		TaskDeleteConfirm: "Удалить задачу %s?",
		TaskCreated:       "Задача создана: %s",
		TaskStatusUpdated: "Задача %s теперь в статусе %s",
		TaskDeleted:       "Задача %s удалена",
		RoomJoined:        "Вы вошли в комнату %s",
	},
}

// Catalog returns a catalog with every supported locale registered.
// English is the fallback for unsupported tags.
func Catalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, value := range msgs {
			// SetString only fails for malformed tags, and ours are constants.
			_ = b.SetString(tag, key, value)
		}
	}
	return b
}

// Printer returns a printer for the best match of tag among the supported
// locales.
func Printer(tag language.Tag) *message.Printer {
	_, idx, _ := language.NewMatcher(supported).Match(tag)
	return message.NewPrinter(supported[idx], message.Catalog(Catalog()))
}

// ParseLocale parses a BCP 47 tag, falling back to English on error.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}
