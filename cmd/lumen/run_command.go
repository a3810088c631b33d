package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lumen/internal/config"
	"lumen/internal/ipc"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Execute a scene script and reconcile the live scene table",
		Long: "Execute a scene-declaration script on the daemon. Without an argument the " +
			"configured startup script is re-executed. With --inline the script content " +
			"is read locally and sent over the socket, which allows running scripts the " +
			"daemon process cannot read itself.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.RunScriptRequest{}
			if len(args) == 1 {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve script path: %w", err)
				}
				if inline {
					source, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("read script: %w", err)
					}
					req.Source = string(source)
				} else {
					req.Path = path
				}
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				req.Path = cfg.Script.Path
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RunScript(req)
				if err != nil {
					return fmt.Errorf("run script: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d scenes)\n", resp.Summary, resp.Scenes)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&inline, "inline", false, "Send script content over the socket instead of a path")
	return cmd
}
