package cmd

import (
	"errors"
	"os"

	"github.com/kb-dk/github-cloner/internal/application"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   application.AppName + " [--org NAME]... [--user NAME]...",
	Short: "Mirror every repository and gist of GitHub users and organizations",
	Long: `github-cloner keeps a local tree of bare git mirrors in step with GitHub.

For each organization and user it lists all repositories and gists and
either clones a new mirror or fetches into the existing one:

  <dest>/repos/<owner>/<name>.git
  <dest>/gists/<owner>/<id>.git

Each mirror gets a "description" and a "cloneurl" file for git web front
ends. Running it again is safe: existing mirrors are only updated.

Settings are read from flags, then GITHUB_CLONER_* environment variables,
then an optional .env file. A token is taken from --token, GITHUB_TOKEN or
GH_TOKEN; without one only public data is listed.

Examples:
  # Mirror an organization and a user into /srv/git
  github-cloner --org kb-dk --user alice --dest /srv/git

  # Only gists, four at a time
  github-cloner --user alice --kinds gists --parallel 4

  # Show what would happen
  github-cloner --org kb-dk --dry-run`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMirror,
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var failures *failuresError
		if !errors.As(err, &failures) {
			_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		}

		os.Exit(1)
	}
}

func init() {
	addMirrorFlags(rootCmd)
}
