package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/pkg/format"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered wallets",
	Long: `List registered wallets.

The store is opened read only. It is still locked while doclocker serve
runs, so stop the server first.`,
	Args: cobra.NoArgs,
	RunE: runUsers,
}

func runUsers(cmd *cobra.Command, args []string) error {
	a, err := openReadOnlyApp()
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.users.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no registered wallets")
		return nil
	}

	_, err = cmd.OutOrStdout().Write(renderUsers(list, time.Now()))
	return err
}

func renderUsers(list []doclocker.User, now time.Time) []byte {
	rows := make([]format.Row, len(list))
	for i, u := range list {
		rows[i] = format.Row{
			{Key: "Wallet", Value: u.Wallet},
			{Key: "Name", Value: u.Name},
			{Key: "Role", Value: u.Role},
			{Key: "Authority", Value: u.Authority},
			{Key: "Registered", Value: humanize.RelTime(u.Created, now, "ago", "from now")},
		}
	}
	return format.Basic{}.Render(rows, format.Options{Sort: true})
}
