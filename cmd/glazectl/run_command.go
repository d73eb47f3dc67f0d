package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luciancaetano/glazeipc"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "command <text>",
		Short: "Run a window manager command",
		Long: `Run a window manager command. Quote commands that carry their own flags:

  glazectl command "focus --direction left"
  glazectl command close -c <container-id>

The command applies to the focused container unless -c names another one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return ctx.withClient(cmd, func(client glazeipc.Client) error {
				resp, err := client.RunCommand(cmd.Context(), text, subject)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Subject container: %s\n", resp.SubjectContainerID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&subject, "container", "c", "", "Subject container id")
	return cmd
}
