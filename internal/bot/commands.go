package bot

import "github.com/bwmarrin/discordgo"

var manageGuild int64 = discordgo.PermissionManageServer

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "embeds",
			Description:              "List the embeds managed from the dashboard",
			DefaultMemberPermissions: &manageGuild,
			DescriptionLocalizations: &map[discordgo.Locale]string{
				discordgo.French:    "Lister les embeds geres depuis le tableau de bord",
				discordgo.EnglishUS: "List the embeds managed from the dashboard",
				discordgo.SpanishES: "Listar los embeds gestionados desde el panel",
			},
		},
		{
			Name:                     "config",
			Description:              "Show this server's configuration",
			DefaultMemberPermissions: &manageGuild,
			DescriptionLocalizations: &map[discordgo.Locale]string{
				discordgo.French:    "Afficher la configuration du serveur",
				discordgo.EnglishUS: "Show this server's configuration",
				discordgo.SpanishES: "Mostrar la configuracion del servidor",
			},
		},
	}

	appID := b.session.State.User.ID
	_, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commands)
	return err
}
