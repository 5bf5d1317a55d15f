package formatter

import (
	"fmt"
	"strings"

	"github.com/desertthunder/plbot/internal/models"
)

// ParseMode is the markup dialect every rendered message uses.
const ParseMode = "Markdown"

// Fixed replies.
const (
	MsgAskName             = "🎶 Введите название плейлиста:"
	MsgAskDescription      = "📝 Введите описание (или /skip):"
	MsgEmptyName           = "❌ Название не может быть пустым. Введите название плейлиста:"
	MsgNameTooLong         = "❌ Слишком длинное название. Введите название покороче:"
	MsgCancelled           = "🚫 Создание плейлиста отменено."
	MsgNothingToCancel     = "🤷 Нечего отменять."
	MsgNoPlaylists         = "📭 Пока нет ни одного плейлиста."
	MsgNoOwnPlaylists      = "📭 У вас пока нет плейлистов. Создайте первый: /new_playlist"
	MsgPlaylistNotFound    = "❌ Плейлист не найден!"
	MsgTrackNotFound       = "❌ Трек не найден!"
	MsgForbiddenDelete     = "❌ Вы не можете удалить чужой плейлист!"
	MsgForbiddenEdit       = "❌ Вы не можете редактировать чужой плейлист!"
	MsgCreatePlaylistFirst = "❌ Сначала создайте плейлист!"
	MsgSendAudio           = "❌ Отправьте аудиофайл!"
	MsgAddTrackHint        = "🎵 Пришлите аудиофайл — и я добавлю его в плейлист!"
	MsgNoTracksToPlay      = "😞 В плейлисте нет треков."
	MsgNoTracksToRemove    = "🎵 В плейлисте нет треков для удаления"
	MsgInvalidInput        = "❌ Некорректные данные."
	MsgGenericError        = "❌ Произошла ошибка!"
	MsgSlowDown            = "⏳ Слишком много запросов. Подождите немного."
	MsgUnknown             = "🤔 Не понимаю. Используйте /start, /all или /new_playlist."
	MsgRenameUsage         = "✏️ Использование: /rename <id> <новое название>"
	MsgEditUsage           = "✏️ Использование: /edit_playlist <id>"
	MsgCoverUsage          = "🖼 Отправьте фото с подписью /cover <id>"
)

// Button labels.
const (
	BtnAllPlaylists   = "📂 Все плейлисты"
	BtnMyPlaylists    = "🎧 Мои плейлисты"
	BtnCreatePlaylist = "➕ Создать плейлист"
	BtnCreateOwn      = "➕ Создать свой"
	BtnPlay           = "▶️ Воспроизвести"
	BtnEdit           = "✏️ Редактировать"
	BtnDelete         = "🗑️ Удалить"
	BtnBack           = "🔙 Назад"
)

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// EscapeMarkdown escapes user-supplied text for [ParseMode] messages.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func Welcome() string {
	return "🎵 *Добро пожаловать в Лаврушку!*\n\n" +
		"_Здесь вы можете:_\n" +
		"• Создавать персональные плейлисты\n" +
		"• Сохранять любимые треки\n" +
		"• Управлять своей коллекцией музыки\n\n" +
		"✨ _Используйте кнопки ниже для навигации_"
}

func PlaylistCreated(name string) string {
	return fmt.Sprintf("✅ *Плейлист «%s» создан!*", EscapeMarkdown(name))
}

func PlaylistDeleted(name string) string {
	return fmt.Sprintf("🗑 *Плейлист «%s» удален!*", EscapeMarkdown(name))
}

func PlaylistRenamed(name string) string {
	return fmt.Sprintf("✏️ *Плейлист переименован в «%s»*", EscapeMarkdown(name))
}

func CoverUpdated(name string) string {
	return fmt.Sprintf("🖼 *Обложка плейлиста «%s» обновлена!*", EscapeMarkdown(name))
}

func TrackRemoved(title string) string {
	return fmt.Sprintf("🗑 Трек *%s* удален!", EscapeMarkdown(title))
}

// PlaylistsSummary is the header of the playlist list: count and total duration.
func PlaylistsSummary(title string, playlists []models.Playlist) string {
	total := 0
	for _, p := range playlists {
		total += p.Duration
	}
	return fmt.Sprintf("📂 *%s*\n└ Всего: %d\n└ Общая длительность: %s", title, len(playlists), FormatDuration(total))
}

// PlaylistButton labels a playlist in a list keyboard. Button text is plain, so nothing is escaped.
func PlaylistButton(p models.Playlist) string {
	return fmt.Sprintf("📀 %s [%s]", p.Name, p.Owner.Mention())
}

// TrackButton labels a track in the removal keyboard.
func TrackButton(t models.Track) string {
	return fmt.Sprintf("❌ %s (%s)", t.Title, FormatDuration(t.Duration))
}

// PlaylistCard renders the detail view of a playlist. The owner must be loaded.
func PlaylistCard(p *models.Playlist) string {
	description := p.Description
	if description == "" {
		description = "Нет описания"
	}

	owner := "Аноним"
	if p.Owner != nil && p.Owner.DisplayName != "" {
		owner = p.Owner.DisplayName
	}

	return fmt.Sprintf(
		"🎧 *%s*\n_%s_\n\n📅 Создан: `%s`\n🎶 Треков: `%d`\n⏱ Длительность: `%s`\n👤 Владелец: %s\n\n⚙️ *Действия:*",
		EscapeMarkdown(p.Name),
		EscapeMarkdown(description),
		p.CreatedAt.Format("02.01.2006"),
		p.TrackCount,
		FormatDuration(p.Duration),
		EscapeMarkdown(owner),
	)
}

func TrackAdded(t *models.Track, p *models.Playlist) string {
	return fmt.Sprintf(
		"🎵 *Трек успешно добавлен!*\n\n▫️ Название: %s\n▫️ Плейлист: %s\n▫️ Общая длительность: %s",
		EscapeMarkdown(t.Title),
		EscapeMarkdown(p.Name),
		FormatDuration(p.Duration),
	)
}

func ChooseTracksToRemove(name string) string {
	return fmt.Sprintf("🎧 Выберите треки для удаления из плейлиста *%s*:", EscapeMarkdown(name))
}
