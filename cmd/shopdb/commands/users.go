package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/lib/utils"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/spf13/cobra"
)

var (
	// Users flags
	listLimit    int
	upsertParams repository.UpsertUserParams
	userName     string
	referrerID   int64
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			users, err := a.Repositories.Shop.ListUsers(ctx, listLimit)
			if err != nil {
				return err
			}
			return p.Result(users, func() { printUsers(p, users) })
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <telegram-id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("telegram id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			user, found, err := a.Repositories.Shop.GetUserByID(ctx, id)
			if err != nil {
				return err
			}
			if !found {
				return p.Result(nil, func() { p.Warning("User %d not found", id) })
			}
			return p.Result(user, func() { printUsers(p, []model.User{user}) })
		})
	},
}

var usersLangCmd = &cobra.Command{
	Use:   "lang <telegram-id>",
	Short: "Show a user's language code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("telegram id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			code, found, err := a.Repositories.Shop.GetUserLanguage(ctx, id)
			if err != nil {
				return err
			}
			if !found {
				return p.Result(nil, func() { p.Warning("User %d not found", id) })
			}
			return p.Result(map[string]string{"language_code": code}, func() { p.Info("%s", code) })
		})
	},
}

var usersUpsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Insert a user, or update the names of an existing one",
	Long: `Insert a user, or update the full name and user name of an existing one.

Examples:
  shopdb users upsert --id 1 --name "John Doe" --username johnny --lang en
  shopdb users upsert --id 2 --name "Jane Doe" --lang en --referrer 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := upsertParams
		params.UserName = optionalString(userName)
		if cmd.Flags().Changed("referrer") {
			params.ReferrerID = &referrerID
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			user, err := a.Repositories.Shop.UpsertUser(ctx, params)
			if err != nil {
				return err
			}
			return p.Result(user, func() { p.Success("Saved user %d (%s)", user.TelegramID, user.FullName) })
		})
	},
}

var usersSetReferrerCmd = &cobra.Command{
	Use:   "set-referrer <telegram-id> [referrer-id]",
	Short: "Set a user's referrer, or clear it when none is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("telegram id", args[0])
		if err != nil {
			return err
		}

		var referrer *int64
		if len(args) == 2 {
			rid, err := parseID("referrer id", args[1])
			if err != nil {
				return err
			}
			referrer = &rid
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			if err := a.Repositories.Shop.SetReferrer(ctx, id, referrer); err != nil {
				return err
			}
			return p.Result(map[string]*int64{"referrer_id": referrer}, func() {
				p.Success("Referrer of user %d is now %s", id, formatID(referrer))
			})
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <telegram-id>",
	Short: "Delete a user; its referrals and orders are kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("telegram id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			if err := a.Repositories.Shop.DeleteUser(ctx, id); err != nil {
				return err
			}
			return p.Result(map[string]int64{"deleted": id}, func() { p.Success("Deleted user %d", id) })
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersLangCmd, usersUpsertCmd, usersSetReferrerCmd, usersDeleteCmd)

	usersListCmd.Flags().IntVar(&listLimit, "limit", 100, "Maximum number of users")

	usersUpsertCmd.Flags().Int64Var(&upsertParams.TelegramID, "id", 0, "Telegram id")
	usersUpsertCmd.Flags().StringVar(&upsertParams.FullName, "name", "", "Full name")
	usersUpsertCmd.Flags().StringVar(&userName, "username", "", "Telegram user name")
	usersUpsertCmd.Flags().StringVar(&upsertParams.LanguageCode, "lang", "", "Language code")
	usersUpsertCmd.Flags().Int64Var(&referrerID, "referrer", 0, "Telegram id of the referring user")
	_ = usersUpsertCmd.MarkFlagRequired("id")
	_ = usersUpsertCmd.MarkFlagRequired("name")
	_ = usersUpsertCmd.MarkFlagRequired("lang")
}

func userRow(u model.User) []string {
	return []string{
		strconv.FormatInt(u.TelegramID, 10),
		u.FullName,
		utils.Deref(u.UserName, "-"),
		u.LanguageCode,
		formatID(u.ReferrerID),
		u.CreatedAt.Format(time.DateTime),
	}
}

func printUsers(p *output.Printer, users []model.User) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow(u))
	}
	p.Table([]string{"TELEGRAM ID", "FULL NAME", "USER NAME", "LANG", "REFERRER", "CREATED"}, rows)
}
