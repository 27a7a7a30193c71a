package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/config"
	"github.com/MrSnakeDoc/quill/internal/post"
)

// errFailed is returned once a command already printed its own report.
var errFailed = errors.New("failed")

type options struct {
	noColor bool
	variant string
}

// NewRootCmd builds the quill command tree. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "quill",
		Short: "Validate and serve a markdown blog collection",
		Long: `quill validates blog post frontmatter against the post schema and
serves the valid posts as a JSON API.

Configuration is read from QUILL_* environment variables.
Run 'quill' with no arguments to start the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVar(&opts.variant, "variant", "", "Series schema variant: series-pair or series-fields (default: QUILL_SCHEMA_VARIANT)")

	root.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newListCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(root.ErrOrStderr(), color.RedString("error:"), err)
		}
		return 1
	}
	return 0
}

// contentConfig loads the environment and applies the command line
// overrides shared by the offline commands.
func contentConfig(opts *options, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.ContentDir = args[0]
	}
	if opts.variant != "" {
		enc, err := post.ParseSeriesEncoding(opts.variant)
		if err != nil {
			return nil, err
		}
		cfg.SchemaVariant = enc
	}
	return cfg, nil
}

func ok(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func warn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

func bad(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.RedString("✗"), fmt.Sprintf(format, a...))
}

