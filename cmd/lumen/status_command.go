package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lumen/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and performance status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Running", yesNo(status.Running)},
					{"PID", strconv.Itoa(status.PID)},
					{"Scenes", strconv.Itoa(status.Engine.SceneCount)},
					{"Current scene", currentSceneLabel(status)},
					{"Live objects", strconv.Itoa(status.Engine.ObjectCount)},
					{"Lock file", status.LockPath},
				}
				if status.Engine.LastError != "" {
					rows = append(rows, []string{"Last error", status.Engine.LastError})
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}

func currentSceneLabel(status *ipc.StatusResponse) string {
	if status.Engine.SceneCount == 0 {
		return "(none)"
	}
	name := status.Engine.CurrentScene
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s [%d]", name, status.Engine.CurrentIndex)
}
