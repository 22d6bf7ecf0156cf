package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/eventlog"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// channelSession is the part of *discordgo.Session that posts embeds
type channelSession interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ eventlog.Mirror = (*ChannelAuditor)(nil)

// ChannelAuditor mirrors audit entries into each guild's log channel
type ChannelAuditor struct {
	session  channelSession
	channels map[string]string
}

// NewChannelAuditor creates an auditor posting to the channels of channels, keyed by guild
func NewChannelAuditor(session channelSession, channels map[string]string) *ChannelAuditor {
	return &ChannelAuditor{session: session, channels: channels}
}

// MirrorAction posts entry as an embed. Guilds without a log channel are skipped.
func (a *ChannelAuditor) MirrorAction(ctx context.Context, entry domain.AuditEntry) error {
	channelID, ok := a.channels[entry.GuildID]
	if !ok || channelID == "" {
		logger.FromContext(ctx).Debug(LogMsgNoAuditChannel, "guild_id", entry.GuildID)
		return nil
	}
	if _, err := a.session.ChannelMessageSendEmbed(channelID, auditEmbed(entry), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf(ErrMsgSendAudit, channelID, err)
	}
	return nil
}

func auditEmbed(entry domain.AuditEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: entry.Message,
		Color:       severityColor(entry.Severity),
		Timestamp:   entry.CreatedAt.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: FooterAudit,
		},
	}
	if entry.ActorID != "" {
		embed.Description = fmt.Sprintf("<@%s> %s", entry.ActorID, entry.Message)
	}
	return embed
}

func severityColor(s domain.Severity) int {
	switch s {
	case domain.SeverityChange:
		return ColorChange
	case domain.SeverityWarning:
		return ColorWarning
	case domain.SeverityDanger:
		return ColorDanger
	default:
		return ColorInfo
	}
}
