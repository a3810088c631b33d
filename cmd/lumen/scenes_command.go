package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/ipc"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List declared scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Scenes()
				if err != nil {
					return fmt.Errorf("fetch scenes: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(resp.Scenes) == 0 {
					fmt.Fprintln(out, "No scenes declared; run a scene script with `lumen run`.")
					return nil
				}
				rows := make([][]string, 0, len(resp.Scenes))
				for _, s := range resp.Scenes {
					marker := ""
					if s.Current {
						marker = "*"
					}
					rows = append(rows, []string{
						marker,
						strconv.Itoa(s.Index),
						s.ID,
						s.Name,
						strings.Join(s.Objects, ", "),
					})
				}
				headers := []string{"", "Index", "ID", "Name", "Objects"}
				aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
}
