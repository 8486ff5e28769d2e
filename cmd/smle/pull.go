package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smle-dev/smle/internal/templates"
)

var (
	listFlag  bool
	forceFlag bool
)

var pullExampleDesc = `smle pull basic
smle pull basic ./my-project --force
smle pull --list`

var pullCmd = &cobra.Command{
	Use:     "pull [template] [path]",
	Short:   "Download a project template",
	Long:    "Download a template from the smle templates repository into a directory",
	Example: pullExampleDesc,
	Args:    cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPull(cmd, args)
	},
}

func init() {
	pullCmd.Flags().BoolVar(&listFlag, "list", false, "List available templates in the repository")
	pullCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite existing files if needed")
	rootCmd.AddCommand(pullCmd)
}

// newPuller builds the puller against the real GitHub API. Tests swap it for
// one pointed at a fake server.
var newPuller = func(log *zerolog.Logger) *templates.Puller {
	return templates.NewPuller(os.Getenv("GITHUB_TOKEN"), log)
}

func runPull(cmd *cobra.Command, args []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	puller := newPuller(&log)
	ctx := cmd.Context()

	if listFlag {
		names, err := puller.List(ctx)
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("template name is required (or use --list to see available templates)")
	}
	template := args[0]
	dest := "."
	if len(args) > 1 {
		dest = args[1]
	}

	if err := puller.Pull(ctx, template, dest, forceFlag); err != nil {
		return err
	}
	cmd.Printf("pulled template %q into %s\n", template, dest)
	return nil
}
