package main

// Render a portfolio page from a parsed résumé without the API:
//   go run ./cmd/renderportfolio resume.json --theme dark -o portfolio.html
//   go run ./cmd/renderportfolio --sample -o out/portfolio.html

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resumeflow/resume/model"
	"resumeflow/resume/render"
)

type options struct {
	theme  string
	output string
	sample bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "renderportfolio [resume.json]",
		Short: "Render a static portfolio page from a parsed resume",
		Long: `renderportfolio reads a parsed resume (the parsed_resume object returned by
the analyze endpoint) and writes the same self-contained HTML page the portfolio
endpoint produces. Use "-" to read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.sample && len(args) == 0 {
				return fmt.Errorf("a resume file or --sample is required")
			}
			var in io.Reader
			if opts.sample {
				payload, err := json.Marshal(sampleResume())
				if err != nil {
					return err
				}
				in = bytes.NewReader(payload)
			} else if args[0] == "-" {
				in = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open resume: %w", err)
				}
				defer f.Close()
				in = f
			}

			out := cmd.OutOrStdout()
			if opts.output != "" {
				if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
					return err
				}
				f, err := os.Create(opts.output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := renderPortfolio(in, out, opts.theme); err != nil {
				return err
			}
			if opts.output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "OK: wrote %s\n", opts.output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.theme, "theme", render.ThemeLight, "light, dark or neutral")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "render a built-in sample resume")
	_ = cmd.RegisterFlagCompletionFunc("theme", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{render.ThemeLight, render.ThemeDark, render.ThemeNeutral}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func renderPortfolio(in io.Reader, out io.Writer, theme string) error {
	var resume model.ParsedResume
	if err := json.NewDecoder(in).Decode(&resume); err != nil {
		return fmt.Errorf("decode resume: %w", err)
	}
	if !resume.HasName() {
		return fmt.Errorf("resume must include personal_info.full_name")
	}
	html, err := render.Portfolio(&resume, theme)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, html)
	return err
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
