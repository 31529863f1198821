package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	output        string
	wasm          string
	digest        string
	grantsPath    string
	securityLevel string
	verbose       bool
	strict        bool
	enforceRanges bool
	trustPlugin   bool
}

func newRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "democtl",
		Short: "Demo actions module host",
		Long: `democtl drives the demo counter module through its INFO, POST and GET
operations. By default the module runs in-process; pass --wasm to load a
compiled module into the WASM host instead.

Example:
  democtl info
  democtl post increment --params '{"count":5,"amount":2}'
  democtl --wasm demo-actions.wasm get reset`,
		Version:      version,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.output, "output", "o", "json", "output format (json|yaml)")
	pf.StringVar(&opts.wasm, "wasm", "", "path to a compiled module; runs in-process when empty")
	pf.StringVar(&opts.digest, "digest", "", "expected module digest, e.g. sha256:<hex>")
	pf.StringVar(&opts.grantsPath, "grants", "", "grant store path (default ~/.reglet/demo-actions/grants.yaml)")
	pf.StringVar(&opts.securityLevel, "security-level", "standard", "capability security level (strict|standard|permissive)")
	pf.BoolVar(&opts.trustPlugin, "trust-plugin", false, "grant every requested capability without prompting")
	pf.BoolVar(&opts.strict, "strict", false, "reject unknown capability kinds when validating")
	pf.BoolVar(&opts.enforceRanges, "enforce-ranges", false, "reject parameters outside their declared range")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInfoCommand(opts),
		newPostCommand(opts),
		newGetCommand(opts),
		newSchemaCommand(opts),
		newValidateCommand(opts),
		newRiskCommand(opts),
		newGrantsCommand(opts),
	)

	return rootCmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// writeDocument prints a JSON document in the selected output format.
func (o *rootOptions) writeDocument(w io.Writer, raw []byte) error {
	switch o.output {
	case "json", "":
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	case "yaml":
		out, err := yaml.JSONToYAML(raw)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", o.output)
	}
}

func (o *rootOptions) writeValue(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return o.writeDocument(w, raw)
}
