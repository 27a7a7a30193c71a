package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/post"
)

func newCheckCmd(opts *options) *cobra.Command {
	var strictUnknown bool

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Validate the frontmatter of every post",
		Long: `Validate every markdown file of the collection and report each
violated constraint. Exits with status 1 when any file is invalid.

Examples:
  quill check                      # QUILL_CONTENT_DIR
  quill check ./content/blog
  quill check --strict-unknown     # also fail on keys the schema ignores`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := contentConfig(opts, args)
			if err != nil {
				return err
			}
			loader := content.NewLoader(cfg.ContentDir,
				post.NewSchema(post.WithSeriesEncoding(cfg.SchemaVariant)),
				content.WithWordsPerMinute(cfg.WordsPerMinute),
			)
			coll, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !printReport(cmd.OutOrStdout(), coll, strictUnknown) {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strictUnknown, "strict-unknown", false, "Treat unknown frontmatter keys as errors")
	return cmd
}

// printReport writes one block per problem file and a summary line.
// It reports whether the collection passed.
func printReport(w io.Writer, coll *content.Collection, strictUnknown bool) bool {
	for _, b := range coll.Broken {
		bad(w, "%s: %v", b.Path, b.Err)
	}
	for _, f := range coll.Failures {
		bad(w, "%s", f.ContentID)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "    %-22s %s: %s\n", color.YellowString(e.Kind.String()), e.Field, e.Message)
		}
	}

	unknown := 0
	for _, e := range coll.Entries {
		if len(e.UnknownKeys) == 0 {
			continue
		}
		unknown++
		msg := fmt.Sprintf("%s: unknown keys %s", e.ID, strings.Join(e.UnknownKeys, ", "))
		if strictUnknown {
			bad(w, "%s", msg)
		} else {
			warn(w, "%s", msg)
		}
	}

	problems := len(coll.Broken) + len(coll.Failures)
	if strictUnknown {
		problems += unknown
	}

	fmt.Fprintln(w)
	if problems > 0 {
		bad(w, "%d of %d files have problems (%d invalid, %d unreadable)",
			problems, coll.FileCount(), len(coll.Failures), len(coll.Broken))
		return false
	}
	ok(w, "%d posts valid", len(coll.Entries))
	return true
}
