package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/reward"
)

// roleSession is the part of *discordgo.Session that changes member roles
type roleSession interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

var _ reward.RoleApplier = (*RoleApplier)(nil)

// RoleApplier grants and revokes reward roles through the Discord REST API.
// The reason ends up in the guild's audit log.
type RoleApplier struct {
	session roleSession
}

// NewRoleApplier creates a role applier over a session
func NewRoleApplier(session roleSession) *RoleApplier {
	return &RoleApplier{session: session}
}

// GrantRole adds roleID to the member
func (a *RoleApplier) GrantRole(ctx context.Context, guildID, memberID, roleID, reason string) error {
	err := a.session.GuildMemberRoleAdd(guildID, memberID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf(ErrMsgGrantRole, roleID, err)
	}
	logger.FromContext(ctx).Debug(LogMsgRoleGranted, "guild_id", guildID, "member_id", memberID, "role_id", roleID)
	return nil
}

// RevokeRole removes roleID from the member
func (a *RoleApplier) RevokeRole(ctx context.Context, guildID, memberID, roleID, reason string) error {
	err := a.session.GuildMemberRoleRemove(guildID, memberID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf(ErrMsgRevokeRole, roleID, err)
	}
	logger.FromContext(ctx).Debug(LogMsgRoleRevoked, "guild_id", guildID, "member_id", memberID, "role_id", roleID)
	return nil
}
