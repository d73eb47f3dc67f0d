package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luciancaetano/glazeipc"
)

var queryNames = []string{
	glazeipc.QueryNameMonitors,
	glazeipc.QueryNameWorkspaces,
	glazeipc.QueryNameWindows,
	glazeipc.QueryNameFocused,
	glazeipc.QueryNameBindingModes,
	glazeipc.QueryNameAppMetadata,
	glazeipc.QueryNamePaused,
	glazeipc.QueryNameTilingDirection,
}

func newQueryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "query <name>",
		Short:     "Query window manager state",
		Long:      "Query window manager state. Known names: " + strings.Join(queryNames, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: queryNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return ctx.withClient(cmd, func(client glazeipc.Client) error {
				data, err := client.Query(cmd.Context(), name)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, data)
				}
				return printQuery(cmd, name, data)
			})
		},
	}
}

// printQuery renders container listings as tables and everything else as
// JSON.
func printQuery(cmd *cobra.Command, name string, data json.RawMessage) error {
	out := cmd.OutOrStdout()

	switch name {
	case glazeipc.QueryNameMonitors:
		var resp glazeipc.MonitorsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("decode monitors: %w", err)
		}
		fmt.Fprintln(out, renderMonitors(resp.Monitors))
	case glazeipc.QueryNameWorkspaces:
		var resp glazeipc.WorkspacesResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("decode workspaces: %w", err)
		}
		fmt.Fprintln(out, renderWorkspaces(resp.Workspaces))
	case glazeipc.QueryNameWindows:
		var resp glazeipc.WindowsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("decode windows: %w", err)
		}
		fmt.Fprintln(out, renderWindows(resp.Windows))
	default:
		return writeJSON(cmd, data)
	}
	return nil
}

func renderMonitors(monitors []glazeipc.Container) string {
	if len(monitors) == 0 {
		return "No monitors"
	}
	rows := make([][]string, 0, len(monitors))
	for _, m := range monitors {
		rows = append(rows, []string{
			m.ID,
			m.DeviceName,
			size(m),
			position(m),
			strconv.FormatFloat(m.ScaleFactor, 'g', -1, 64),
			yesNo(m.HasFocus),
		})
	}
	return renderTable([]column{
		left("ID"), left("Device"), right("Size"), right("Position"), right("Scale"), left("Focus"),
	}, rows)
}

func renderWorkspaces(workspaces []glazeipc.Container) string {
	if len(workspaces) == 0 {
		return "No workspaces"
	}
	rows := make([][]string, 0, len(workspaces))
	for _, w := range workspaces {
		display := w.DisplayName
		if display == "" {
			display = w.Name
		}
		rows = append(rows, []string{
			w.Name,
			display,
			yesNo(w.IsDisplayed),
			w.TilingDirection,
			strconv.Itoa(len(w.Children)),
			yesNo(w.HasFocus),
		})
	}
	return renderTable([]column{
		left("Name"), left("Display"), left("Shown"), left("Direction"), right("Children"), left("Focus"),
	}, rows)
}

func renderWindows(windows []glazeipc.Container) string {
	if len(windows) == 0 {
		return "No windows"
	}
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []string{
			w.ID,
			w.ProcessName,
			truncate(w.Title, 40),
			w.DisplayState,
			size(w),
			yesNo(w.HasFocus),
		})
	}
	return renderTable([]column{
		left("ID"), left("Process"), left("Title"), left("State"), right("Size"), left("Focus"),
	}, rows)
}

func size(c glazeipc.Container) string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

func position(c glazeipc.Container) string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
