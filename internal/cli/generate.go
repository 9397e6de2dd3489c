package cli

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/pipeline"
)

type generateOptions struct {
	token  string
	image  string
	output string
	logs   bool
}

func newGenerateCommand(opts *globalOptions) *cobra.Command {
	var o generateOptions

	cmd := &cobra.Command{
		Use:   "generate <repo-url>",
		Short: "Generate a Dockerfile for a repository and build it once",
		Example: heredoc.Doc(`
			$ dockgen generate https://github.com/acme/shop --token "$GITHUB_TOKEN"
			$ dockgen generate https://github.com/acme/shop --image shop:dev -o Dockerfile
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := newComponents(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = closeAll(c, err) }()

			res := c.service.GenerateAndBuild(cmd.Context(), domain.GenerateRequest{
				RepoURL:     args[0],
				AccessToken: o.token,
				ImageName:   o.image,
			})
			return printGenerateResult(cmd, o, res)
		},
	}

	cmd.Flags().StringVarP(&o.token, "token", "t", "", "access token used to clone the repository")
	cmd.Flags().StringVar(&o.image, "image", "", "image reference to tag the build with")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "also write the Dockerfile to this path")
	cmd.Flags().BoolVar(&o.logs, "logs", false, "print the build output")
	return cmd
}

func printGenerateResult(cmd *cobra.Command, o generateOptions, res pipeline.Result) error {
	out := cmd.OutOrStdout()

	if o.logs {
		for _, l := range res.Logs {
			fmt.Fprint(out, l)
		}
	}
	if res.RecipeText != "" {
		fmt.Fprintln(out, "# Dockerfile")
		fmt.Fprint(out, res.RecipeText)
	}
	if o.output != "" && res.RecipeText != "" {
		if err := os.WriteFile(o.output, []byte(res.RecipeText), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.output, err)
		}
	}

	if res.Detected != nil {
		fmt.Fprintf(out, "\nstack:  %s (%s)\n", res.Detected.PrimaryType, res.Detected.PackageManager)
	}
	fmt.Fprintf(out, "job:    %s\n", res.JobID)
	if res.ImageTag != "" {
		fmt.Fprintf(out, "image:  %s\n", res.ImageTag)
	}

	if !res.Success {
		if !o.logs && len(res.Logs) > 0 {
			fmt.Fprintln(out, "\nlast build output:")
			for _, l := range tail(res.Logs, 10) {
				fmt.Fprint(out, l)
			}
		}
		return fmt.Errorf("job %s failed: %s", res.JobID, res.Error)
	}
	return nil
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
