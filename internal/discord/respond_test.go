package discord

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spencerchil/spencerbot/internal/discord/mock"
	"github.com/spencerchil/spencerbot/internal/drill"
)

func TestEmbedRendering(t *testing.T) {
	t.Parallel()

	embed := Embed(drill.Message{
		Title: "🔊 Audio Exercise",
		Body:  "Listen and translate.",
		Color: drill.ColorInfo,
		Fields: []drill.Field{
			{Name: "Korean (spoiler)", Value: "안녕하세요", Spoiler: true},
			{Name: "Hint", Value: "greeting", Inline: true},
		},
		Footer: "Active deck: Korean::Week3",
	})

	if embed.Title != "🔊 Audio Exercise" {
		t.Errorf("title = %q, want %q", embed.Title, "🔊 Audio Exercise")
	}
	if embed.Color != colorInfo {
		t.Errorf("color = %#x, want %#x", embed.Color, colorInfo)
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(embed.Fields))
	}
	if got := embed.Fields[0].Value; got != "||안녕하세요||" {
		t.Errorf("spoiler field = %q, want wrapped value", got)
	}
	if embed.Fields[1].Value != "greeting" || !embed.Fields[1].Inline {
		t.Errorf("plain field = %+v, want inline greeting", embed.Fields[1])
	}
	if embed.Footer == nil || embed.Footer.Text != "Active deck: Korean::Week3" {
		t.Errorf("footer = %+v, want active deck text", embed.Footer)
	}
}

func TestEmbedColorTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		color drill.Color
		want  int
	}{
		{drill.ColorNeutral, colorNeutral},
		{drill.ColorInfo, colorInfo},
		{drill.ColorSuccess, colorSuccess},
		{drill.ColorWarning, colorWarning},
		{drill.ColorError, colorError},
	}
	for _, tt := range tests {
		if got := embedColor(tt.color); got != tt.want {
			t.Errorf("embedColor(%d) = %#x, want %#x", tt.color, got, tt.want)
		}
	}
}

func TestSinkAttachesAudio(t *testing.T) {
	t.Parallel()

	sender := &mock.Sender{}
	sink := &channelSink{send: sender, channelID: "chan-audio"}

	err := sink.Send(context.Background(), drill.Message{
		Title:     "🔊 Audio Exercise",
		Audio:     []byte("mp3-bytes"),
		AudioName: "exercise.mp3",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	sent := sender.Last()
	if sent == nil {
		t.Fatal("no message sent")
	}
	if len(sent.Data.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(sent.Data.Files))
	}
	file := sent.Data.Files[0]
	if file.Name != "exercise.mp3" {
		t.Errorf("file name = %q, want %q", file.Name, "exercise.mp3")
	}
	if file.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q, want %q", file.ContentType, "audio/mpeg")
	}
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		t.Fatalf("read attachment: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("attachment = %q, want %q", data, "mp3-bytes")
	}
}

func TestSinkDefaultAudioName(t *testing.T) {
	t.Parallel()

	sender := &mock.Sender{}
	sink := &channelSink{send: sender, channelID: "chan-audio"}

	if err := sink.Send(context.Background(), drill.Message{Audio: []byte{1}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := sender.Last().Data.Files[0].Name; got != "audio.mp3" {
		t.Errorf("file name = %q, want %q", got, "audio.mp3")
	}
}

func TestSinkSendError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("HTTP 403")
	sink := &channelSink{send: &mock.Sender{Err: sendErr}, channelID: "chan-1"}

	err := sink.Send(context.Background(), drill.Message{Title: "x"})
	if !errors.Is(err, sendErr) {
		t.Errorf("err = %v, want wrapped %v", err, sendErr)
	}
}
