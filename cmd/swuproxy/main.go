package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/youruser/swuproxy/internal/app"
	"github.com/youruser/swuproxy/internal/config"
	"github.com/youruser/swuproxy/internal/deck"
	"github.com/youruser/swuproxy/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	load := func() (*app.App, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if verbose {
			cfg.Log.Verbose = true
		}
		// stdout is reserved for command output
		return app.New(cfg, app.NewLogger(cfg, "[swuproxy] ", logger.WithOutput(os.Stderr))), nil
	}

	root := &cobra.Command{
		Use:           "swuproxy",
		Short:         "Turn swudb.com decks into 6x4 photo print proxy sheets",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (optional)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	var output string
	generate := &cobra.Command{
		Use:   "generate <deck id or url>",
		Short: "Download a deck and write its print sheets as a ZIP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			id, err := a.Pipeline.Validate(args[0])
			if err != nil {
				return err
			}
			path, err := a.Pipeline.ProcessDeck(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dst := output
			if dst == "" {
				dst = id.String() + ".zip"
			}
			if err := moveFile(path, dst); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}
	generate.Flags().StringVarP(&output, "output", "o", "", "archive path (default <deck id>.zip)")

	list := &cobra.Command{
		Use:   "list <deck id or url>",
		Short: "Print the deck list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			id, err := a.Pipeline.Validate(args[0])
			if err != nil {
				return err
			}
			d, err := a.Resolver.Resolve(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deck.ExportDeckText(d))
			return nil
		},
	}

	root.AddCommand(generate, list)
	return root
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
