package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/post"
)

func newListCmd(opts *options) *cobra.Command {
	var drafts bool

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List valid posts, newest first",
		Args:  cobra.MaximumNArgs(1),
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

			entries := coll.Entries
			if !drafts && !cfg.ShowDrafts {
				entries = post.FilterDrafts(entries, func(e *content.Entry) *post.PostMetadata { return e.Meta })
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tID\tTITLE\tMIN\tNOTES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					e.Meta.PubDate.Format("2006-01-02"), e.ID, e.Meta.Title, e.ReadingMinutes, notes(e.Meta))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if n := len(coll.Failures) + len(coll.Broken); n > 0 {
				warn(cmd.ErrOrStderr(), "%d files skipped, run 'quill check' for details", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&drafts, "drafts", false, "Include drafts")
	return cmd
}

func notes(m *post.PostMetadata) string {
	var out string
	if m.IsDraft {
		out = color.YellowString("draft") + " "
	}
	if m.Series != nil {
		out += "series:" + m.Series.Slug
	}
	return out
}
