package discord

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/spencerchil/spencerbot/internal/drill"
)

// Embed accent colors, matching the standard Discord palette.
const (
	colorNeutral = 0x95a5a6
	colorInfo    = 0x3498db
	colorSuccess = 0x2ecc71
	colorWarning = 0xe67e22
	colorError   = 0xe74c3c
)

func embedColor(c drill.Color) int {
	switch c {
	case drill.ColorInfo:
		return colorInfo
	case drill.ColorSuccess:
		return colorSuccess
	case drill.ColorWarning:
		return colorWarning
	case drill.ColorError:
		return colorError
	default:
		return colorNeutral
	}
}

// Embed renders an engine message as a Discord embed. Spoiler fields are
// wrapped in Discord spoiler markers so they stay hidden until clicked.
func Embed(msg drill.Message) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       embedColor(msg.Color),
	}
	for _, f := range msg.Fields {
		value := f.Value
		if f.Spoiler {
			value = "||" + value + "||"
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  value,
			Inline: f.Inline,
		})
	}
	if msg.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	return e
}

// messageSender is the slice of discordgo.Session the send path needs.
type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ messageSender = (*discordgo.Session)(nil)

// channelSink delivers engine messages to one Discord channel.
type channelSink struct {
	send      messageSender
	channelID string
}

var _ drill.Sink = (*channelSink)(nil)

// NewSink returns a drill.Sink that posts messages to the given channel.
func NewSink(s *discordgo.Session, channelID string) drill.Sink {
	return &channelSink{send: s, channelID: channelID}
}

// Send implements [drill.Sink].
func (c *channelSink) Send(ctx context.Context, msg drill.Message) error {
	data := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{Embed(msg)},
	}
	if len(msg.Audio) > 0 {
		name := msg.AudioName
		if name == "" {
			name = "audio.mp3"
		}
		data.Files = append(data.Files, &discordgo.File{
			Name:        name,
			ContentType: "audio/mpeg",
			Reader:      bytes.NewReader(msg.Audio),
		})
	}
	if _, err := c.send.ChannelMessageSendComplex(c.channelID, data, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}
