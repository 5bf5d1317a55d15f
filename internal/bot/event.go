package bot

import "strings"

// Event is one inbound update from the chat platform, already stripped of platform specifics.
type Event struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Text      string `json:"text,omitempty"`
	Callback  string `json:"callback,omitempty"`
	Audio     *Audio `json:"audio,omitempty"`
	Photo     *Photo `json:"photo,omitempty"`
}

// Audio is an audio attachment. FileID is the platform's opaque handle.
type Audio struct {
	FileID   string `json:"file_id"`
	Title    string `json:"title,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Photo is an image attachment with its caption.
type Photo struct {
	FileID  string `json:"file_id"`
	Caption string `json:"caption,omitempty"`
}

// Kind names the event for logging.
func (e Event) Kind() string {
	switch {
	case e.Audio != nil:
		return "audio"
	case e.Photo != nil:
		return "photo"
	case e.Callback != "":
		return "callback"
	case strings.HasPrefix(e.Text, "/"):
		return "command"
	case e.Text != "":
		return "text"
	}
	return "empty"
}

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// AudioRef points the platform at a stored audio file to send back.
type AudioRef struct {
	FileID string `json:"file_id"`
	Title  string `json:"title,omitempty"`
}

// Reply is one outbound message.
//
// When PhotoRef is set the text is the photo caption. Edit asks the adapter to replace the message the
// callback came from instead of sending a new one.
type Reply struct {
	Text      string     `json:"text,omitempty"`
	ParseMode string     `json:"parse_mode,omitempty"`
	Keyboard  [][]Button `json:"keyboard,omitempty"`
	PhotoRef  string     `json:"photo_ref,omitempty"`
	Audio     []AudioRef `json:"audio,omitempty"`
	Edit      bool       `json:"edit,omitempty"`
}

func text(msg string) Reply {
	return Reply{Text: msg}
}

func row(buttons ...Button) []Button {
	return buttons
}
