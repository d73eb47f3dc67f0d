package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/luciancaetano/glazeipc"
)

const unsubscribeTimeout = 5 * time.Second

// eventLine is one line of subscribe output.
type eventLine struct {
	EventType      glazeipc.EventType `json:"eventType"`
	SubscriptionID string             `json:"subscriptionId"`
	Data           json.RawMessage    `json:"data,omitempty"`
}

func newSubscribeCommand(ctx *commandContext) *cobra.Command {
	var events []string

	cmd := &cobra.Command{
		Use:   "subscribe -e <event>[,<event>...]",
		Short: "Stream window manager events as JSON lines",
		Long:  "Stream window manager events as JSON lines until interrupted. Use \"all\" for every event; `glazectl events` lists the names.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := make([]glazeipc.EventType, 0, len(events))
			for _, ev := range events {
				types = append(types, glazeipc.EventType(ev))
			}

			return ctx.withClient(cmd, func(client glazeipc.Client) error {
				var mu sync.Mutex
				enc := json.NewEncoder(cmd.OutOrStdout())

				lost := make(chan struct{})
				var lostOnce sync.Once
				client.OnDisconnect(func(voluntary bool) {
					if !voluntary {
						lostOnce.Do(func() { close(lost) })
					}
				})

				unlisten, err := client.SubscribeMany(cmd.Context(), types, func(ev *glazeipc.Event) {
					mu.Lock()
					defer mu.Unlock()
					enc.Encode(eventLine{
						EventType:      ev.Type,
						SubscriptionID: ev.SubscriptionID,
						Data:           ev.Data,
					})
				})
				if err != nil {
					return err
				}

				select {
				case <-cmd.Context().Done():
				case <-lost:
					return errors.New("connection to window manager lost")
				}

				// the command context is already cancelled here
				unsubCtx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
				defer cancel()
				if err := unlisten(unsubCtx); err != nil {
					return fmt.Errorf("unsubscribe: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&events, "events", "e", nil, "Event types to subscribe to (comma separated)")
	cmd.MarkFlagRequired("events")
	return cmd
}

var eventCatalogue = []struct {
	Type        glazeipc.EventType
	Description string
}{
	{glazeipc.EventAll, "every event below"},
	{glazeipc.EventApplicationExiting, "the window manager is shutting down"},
	{glazeipc.EventBindingModesChanged, "a binding mode was enabled or disabled"},
	{glazeipc.EventFocusChanged, "focus moved to another container"},
	{glazeipc.EventFocusedContainerMoved, "the focused container changed position"},
	{glazeipc.EventMonitorAdded, "a monitor was connected"},
	{glazeipc.EventMonitorRemoved, "a monitor was disconnected"},
	{glazeipc.EventMonitorUpdated, "monitor properties changed"},
	{glazeipc.EventPauseChanged, "the window manager was paused or resumed"},
	{glazeipc.EventTilingDirectionChanged, "tiling direction of a container changed"},
	{glazeipc.EventUserConfigChanged, "the user config was reloaded"},
	{glazeipc.EventWindowManaged, "a window started being managed"},
	{glazeipc.EventWindowUnmanaged, "a window stopped being managed"},
	{glazeipc.EventWorkspaceActivated, "a workspace was created"},
	{glazeipc.EventWorkspaceDeactivated, "a workspace was destroyed"},
	{glazeipc.EventWorkspaceUpdated, "workspace properties changed"},
}

func newEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "events",
		Short:       "List subscribable event types",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(eventCatalogue))
			for _, ev := range eventCatalogue {
				rows = append(rows, []string{string(ev.Type), ev.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{left("Event"), left("Description")}, rows))
			return nil
		},
	}
}
