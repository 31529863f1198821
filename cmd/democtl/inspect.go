package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/extractor"
	"github.com/reglet-dev/reglet-demo-actions/host"
	"github.com/reglet-dev/reglet-demo-actions/parser"
	"github.com/reglet-dev/reglet-demo-actions/registry"
	"github.com/reglet-dev/reglet-demo-actions/template"
	"github.com/reglet-dev/reglet-demo-actions/validation"
)

// errInvalidDescriptor is returned by validate after the report is printed.
var errInvalidDescriptor = errors.New("descriptor is invalid")

func newSchemaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <action>",
		Short: "Print the JSON Schema of an action's parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := opts.descriptor(cmd)
			if err != nil {
				return err
			}
			a, ok := desc.Action(args[0])
			if !ok {
				return fmt.Errorf("unknown action %q", args[0])
			}
			raw, err := registry.ActionSchema(a)
			if err != nil {
				return fmt.Errorf("failed to build schema: %w", err)
			}
			return opts.writeDocument(cmd.OutOrStdout(), raw)
		},
	}
}

type validationReport struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Errors  []string `json:"errors,omitempty"`
	Valid   bool     `json:"valid"`
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var vars map[string]string

	cmd := &cobra.Command{
		Use:   "validate [descriptor-file]",
		Short: "Validate a module descriptor",
		Long: `Validate checks a descriptor's structure and its capability declarations.
Without a file it validates the descriptor the module reports. Files may be
JSON or YAML and are rendered as templates when --set is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				desc *descriptor.ModuleDescriptor
				err  error
			)
			if len(args) == 1 {
				desc, err = loadDescriptorFile(args[0], vars)
			} else {
				desc, err = opts.descriptor(cmd)
			}
			if err != nil {
				return err
			}

			report := validationReport{Name: desc.Name, Version: desc.Version}
			if err := desc.Validate(); err != nil {
				report.Errors = append(report.Errors, strings.Split(err.Error(), "\n")...)
			}

			reg, err := registry.NewDefaultRegistry(registry.WithStrictMode(opts.strict))
			if err != nil {
				return fmt.Errorf("failed to build capability registry: %w", err)
			}
			res, err := validation.NewCapabilityValidator(reg).Validate(desc)
			if err != nil {
				return fmt.Errorf("failed to validate capabilities: %w", err)
			}
			report.Errors = append(report.Errors, res.Errors...)
			report.Valid = len(report.Errors) == 0

			if err := opts.writeValue(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return errInvalidDescriptor
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&vars, "set", nil, "template variables, key=value")
	return cmd
}

type riskOutput struct {
	Grants *capability.GrantSet  `json:"grants"`
	Risk   capability.RiskReport `json:"risk"`
}

func newRiskCommand(opts *rootOptions) *cobra.Command {
	var (
		file string
		vars map[string]string
	)

	cmd := &cobra.Command{
		Use:   "risk [action]",
		Short: "Assess the risk of the capabilities a module or action requires",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				required *capability.GrantSet
				err      error
			)
			switch {
			case file != "":
				required, err = manifestGrants(file, vars)
			case len(args) == 1:
				var desc *descriptor.ModuleDescriptor
				if desc, err = opts.descriptor(cmd); err == nil {
					required, err = extractor.NewActionExtractor(desc).Extract(args[0])
				}
			default:
				var desc *descriptor.ModuleDescriptor
				if desc, err = opts.descriptor(cmd); err == nil {
					required, err = descriptorGrants(desc)
				}
			}
			if err != nil {
				return err
			}
			return opts.writeValue(cmd.OutOrStdout(), riskOutput{
				Grants: required,
				Risk:   capability.AnalyzeRisk(required),
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "assess a descriptor file instead of the module")
	cmd.Flags().StringToStringVar(&vars, "set", nil, "template variables for --file, key=value")
	return cmd
}

func newGrantsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Inspect persisted capability grants",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored grants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grants, err := opts.grantStore().Load()
			if err != nil {
				return fmt.Errorf("failed to load grants: %w", err)
			}
			return opts.writeValue(cmd.OutOrStdout(), grants)
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.grantStore()
			if err := store.Save(&capability.GrantSet{}); err != nil {
				return fmt.Errorf("failed to clear grants: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", store.ConfigPath())
			return err
		},
	})

	return cmd
}

// descriptor fetches the descriptor from the selected backend.
func (o *rootOptions) descriptor(cmd *cobra.Command) (*descriptor.ModuleDescriptor, error) {
	ctx := cmd.Context()
	b, err := o.openBackend(ctx, o.logger(cmd))
	if err != nil {
		return nil, err
	}
	defer b.Close(ctx)
	return b.Descriptor(ctx)
}

func loadDescriptorFile(path string, vars map[string]string) (*descriptor.ModuleDescriptor, error) {
	raw, err := host.ReadFileLimited(path, host.DefaultMaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	p, err := parser.ForPath(path)
	if err != nil {
		return nil, err
	}
	if len(vars) > 0 {
		if raw, err = template.NewTextEngine().Render(raw, templateConfig(vars)); err != nil {
			return nil, err
		}
	}
	desc, err := p.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return desc, nil
}

func manifestGrants(path string, vars map[string]string) (*capability.GrantSet, error) {
	raw, err := host.ReadFileLimited(path, host.DefaultMaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	p, err := parser.ForPath(path)
	if err != nil {
		return nil, err
	}
	opts := []extractor.ManifestOption{extractor.WithParser(p)}
	if len(vars) > 0 {
		opts = append(opts, extractor.WithTemplateEngine(template.NewTextEngine()))
	}
	return extractor.NewManifestExtractor(raw, opts...).Extract(templateConfig(vars))
}

func descriptorGrants(desc *descriptor.ModuleDescriptor) (*capability.GrantSet, error) {
	raw, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode descriptor: %w", err)
	}
	return extractor.NewManifestExtractor(raw, extractor.WithParser(parser.NewJSONDescriptorParser())).Extract(nil)
}

func templateConfig(vars map[string]string) map[string]any {
	config := make(map[string]any, len(vars))
	for k, v := range vars {
		config[k] = v
	}
	return config
}
