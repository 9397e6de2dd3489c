package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/melih/dockgen/internal/core/domain"
)

func newPushCommand(opts *globalOptions) *cobra.Command {
	var (
		token   string
		file    string
		branch  string
		message string
	)

	cmd := &cobra.Command{
		Use:   "push <repo-url>",
		Short: "Commit a Dockerfile to a new branch of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			c, err := newComponents(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = closeAll(c, err) }()

			res := c.service.PushRecipe(cmd.Context(), domain.PushRequest{
				RepoURL:       args[0],
				AccessToken:   token,
				RecipeText:    string(raw),
				BranchName:    branch,
				CommitMessage: message,
			})
			if !res.Success {
				return fmt.Errorf("push failed: %s", res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed branch %s\n", res.Branch)
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "access token with push permission")
	cmd.Flags().StringVarP(&file, "file", "f", domain.RecipeFileName, "Dockerfile to commit")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch to create, defaults to dockgen/dockerfile-<unix-ms>")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
