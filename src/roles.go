package hue

import (
	"github.com/bwmarrin/discordgo"
	"github.com/dpatterbee/hue/src/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// roleSession is the part of *discordgo.Session that manages roles.
type roleSession interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildRoleDelete(guildID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

var _ roleSession = (*discordgo.Session)(nil)

// discordRoles implements color.Roles on top of a Discord session.
type discordRoles struct {
	s roleSession
}

var _ color.Roles = discordRoles{}

func (d discordRoles) List(guildID string) ([]string, error) {
	roles, err := d.s.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Create makes a role with no permissions, named name and coloured c.
func (d discordRoles) Create(guildID, name string, c color.Color) (string, error) {
	rgb := c.Int()
	var none int64
	no := false

	r, err := d.s.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Color:       &rgb,
		Hoist:       &no,
		Permissions: &none,
		Mentionable: &no,
	})
	if err != nil {
		return "", errors.Wrap(err, "couldn't create role")
	}
	log.Debug().Str("guild", guildID).Str("role", r.ID).Str("name", name).Msg("Created role")
	return r.ID, nil
}

func (d discordRoles) Delete(guildID, roleID string) error {
	return d.s.GuildRoleDelete(guildID, roleID)
}

func (d discordRoles) Grant(guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (d discordRoles) Revoke(guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleRemove(guildID, userID, roleID)
}
