// Package discord connects the ledger to Discord: it applies reward roles and
// mirrors audit entries into guild log channels.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Config holds the bot configuration
type Config struct {
	Token string
	// AuditChannels maps guild ids to the channel audit entries are mirrored to
	AuditChannels map[string]string
}

// Session owns the gateway connection used for role changes and audit messages
type Session struct {
	*discordgo.Session
}

// New creates a new Discord session without connecting it
func New(cfg Config) (*Session, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCreateSession, err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return &Session{Session: s}, nil
}

// Start opens the gateway connection
func (s *Session) Start() error {
	s.AddHandler(s.ready)
	if err := s.Open(); err != nil {
		return fmt.Errorf(ErrMsgOpenSession, err)
	}
	return nil
}

// Stop closes the gateway connection
func (s *Session) Stop() error {
	err := s.Close()
	slog.Info(LogMsgSessionClosed)
	return err
}

// Ping reports whether the gateway connection is up
func (s *Session) Ping(_ context.Context) error {
	if s.Session == nil || !s.DataReady {
		return errors.New(ErrMsgNotConnected)
	}
	return nil
}

func (s *Session) ready(ds *discordgo.Session, r *discordgo.Ready) {
	slog.Info(LogMsgSessionReady, "user", r.User.Username, "guilds", len(r.Guilds))
}
