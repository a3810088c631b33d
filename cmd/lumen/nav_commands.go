package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lumen/internal/ipc"
)

func newNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Advance to the following scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Next()
				if err != nil {
					return fmt.Errorf("advance scene: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Now on scene %d\n", resp.Index)
				return nil
			})
		},
	}
}

func newPrevCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "prev",
		Aliases: []string{"previous"},
		Short:   "Step back to the preceding scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Previous()
				if err != nil {
					return fmt.Errorf("step back scene: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Now on scene %d\n", resp.Index)
				return nil
			})
		},
	}
}

func newLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <index>",
		Short: "Switch directly to a scene by index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse scene index %q: %w", args[0], err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Load(index)
				if err != nil {
					return fmt.Errorf("load scene %d: %w", index, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Now on scene %d\n", resp.Index)
				return nil
			})
		},
	}
}
