package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/post"
)

func newMigrateCmd(opts *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "migrate-series [dir]",
		Short: "Rewrite seriesName/seriesSlug frontmatter into seriesInfo",
		Long: `Find posts that use the separate seriesName and seriesSlug keys and
fold them into a single seriesInfo: [name, slug] pair.

Without --write the command only lists the files it would change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := contentConfig(opts, args)
			if err != nil {
				return err
			}
			files, err := content.NewLoader(cfg.ContentDir, post.NewSchema()).Files(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			pending, failed := 0, false
			for _, file := range files {
				changed, err := migrateFile(file, write)
				switch {
				case err != nil:
					bad(w, "%s: %v", file, err)
					failed = true
				case changed && write:
					ok(w, "migrated %s", file)
				case changed:
					warn(w, "would migrate %s", file)
					pending++
				}
			}

			if pending > 0 {
				warn(w, "%d files to migrate, run with --write to apply", pending)
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Rewrite files in place")
	return cmd
}

func migrateFile(file string, write bool) (bool, error) {
	info, err := os.Stat(file)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return false, err
	}
	out, changed, err := content.MigrateSeries(data)
	if err != nil || !changed || !write {
		return changed, err
	}
	return true, os.WriteFile(file, out, info.Mode().Perm())
}
