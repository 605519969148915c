// Package mock provides test doubles for Discord messaging.
package mock

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// SentMessage is one recorded ChannelMessageSendComplex call.
type SentMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
}

// Sender records outbound channel messages for test assertions.
type Sender struct {
	mu sync.Mutex

	// Sent records all ChannelMessageSendComplex calls in order.
	Sent []SentMessage

	// Err is returned by ChannelMessageSendComplex when non-nil.
	Err error
}

// ChannelMessageSendComplex records the message and returns the configured error.
func (m *Sender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{ChannelID: channelID, Data: data})
	if m.Err != nil {
		return nil, m.Err
	}
	return &discordgo.Message{ID: "mock-message"}, nil
}

// Last returns the most recently recorded message, or nil.
func (m *Sender) Last() *SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}
