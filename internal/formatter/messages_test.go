package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/plbot/internal/models"
)

func TestMessages(t *testing.T) {
	t.Run("EscapeMarkdown", func(t *testing.T) {
		if got := EscapeMarkdown("my_list *best* [1] `x`"); got != "my\\_list \\*best\\* \\[1] \\`x\\`" {
			t.Errorf("unexpected escape result %q", got)
		}
	})

	t.Run("PlaylistsSummary", func(t *testing.T) {
		playlists := []models.Playlist{{Duration: 3000}, {Duration: 725}}
		got := PlaylistsSummary("Все плейлисты", playlists)

		if !strings.Contains(got, "Всего: 2") {
			t.Errorf("summary missing count: %q", got)
		}
		if !strings.Contains(got, "Общая длительность: 01ч 02мин") {
			t.Errorf("summary missing total duration: %q", got)
		}
	})

	t.Run("PlaylistButton", func(t *testing.T) {
		p := models.Playlist{Name: "Mix", Owner: &models.User{Handle: "ann"}}
		if got := PlaylistButton(p); got != "📀 Mix [@ann]" {
			t.Errorf("unexpected button label %q", got)
		}

		p.Owner = &models.User{DisplayName: "Bob"}
		if got := PlaylistButton(p); got != "📀 Mix [Bob]" {
			t.Errorf("expected display name fallback, got %q", got)
		}
	})

	t.Run("PlaylistCard", func(t *testing.T) {
		p := &models.Playlist{
			Name:       "Road_trip",
			CreatedAt:  time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC),
			TrackCount: 3,
			Duration:   3725,
			Owner:      &models.User{DisplayName: "Ann"},
		}
		got := PlaylistCard(p)

		for _, want := range []string{"*Road\\_trip*", "_Нет описания_", "`09.03.2024`", "Треков: `3`", "`01ч 02мин`", "Владелец: Ann"} {
			if !strings.Contains(got, want) {
				t.Errorf("card missing %q:\n%s", want, got)
			}
		}

		p.Owner = nil
		if !strings.Contains(PlaylistCard(p), "Владелец: Аноним") {
			t.Error("card without an owner should show the anonymous placeholder")
		}
	})

	t.Run("TrackAdded", func(t *testing.T) {
		got := TrackAdded(&models.Track{Title: "Song"}, &models.Playlist{Name: "Mix", Duration: 90})
		for _, want := range []string{"Название: Song", "Плейлист: Mix", "Общая длительность: 00ч 01мин"} {
			if !strings.Contains(got, want) {
				t.Errorf("message missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("TrackButton", func(t *testing.T) {
		if got := TrackButton(models.Track{Title: "Song", Duration: 3661}); got != "❌ Song (01ч 01мин)" {
			t.Errorf("unexpected track button %q", got)
		}
	})
}
