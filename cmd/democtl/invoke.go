package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	demoactions "github.com/reglet-dev/reglet-demo-actions"
	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/capability/gatekeeper"
	"github.com/reglet-dev/reglet-demo-actions/capability/grantstore"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/extractor"
)

func newInfoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the module descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, b backend, _ *slog.Logger) (string, error) {
				return b.Invoke(ctx, demoactions.Call{Operation: demoactions.OpInfo})
			})
		},
	}
}

func newPostCommand(opts *rootOptions) *cobra.Command {
	var params, network, memo string

	cmd := &cobra.Command{
		Use:   "post <action>",
		Short: "Execute an action",
		Long: `Post executes an action with a JSON parameter document. Network access
declared by the module must be granted first; grants come from the grant
store, an interactive prompt, or --trust-plugin.

Example:
  democtl post increment --params '{"count":5}'
  democtl post toggleStats --params '{"showStats":true}' --network mainnet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			call := demoactions.Call{
				Operation: demoactions.OpPost,
				Action:    args[0],
				Params:    params,
				Network:   network,
				Memo:      memo,
			}
			return opts.run(cmd, func(ctx context.Context, b backend, logger *slog.Logger) (string, error) {
				desc, err := b.Descriptor(ctx)
				if err != nil {
					return "", err
				}
				granted, known, err := opts.resolveGrants(cmd, logger, desc, call.Action, call.Network)
				if err != nil {
					return "", err
				}
				if !known {
					return b.Invoke(ctx, call)
				}

				checker := demoactions.NewCapabilityChecker(
					map[string]*capability.GrantSet{abi.DefaultPluginName: granted},
					demoactions.WithCapabilityDenialHandler(func(_ context.Context, plugin, kind, pattern, message string) {
						logger.Warn("capability denied", "plugin", plugin, "kind", kind, "pattern", pattern, "reason", message)
					}),
				)
				return demoactions.CapabilityMiddleware(checker, abi.DefaultPluginName)(b.Invoke)(ctx, call)
			})
		},
	}

	cmd.Flags().StringVarP(&params, "params", "p", "{}", "JSON parameter document")
	cmd.Flags().StringVarP(&network, "network", "n", "testnet", "network the action runs against")
	cmd.Flags().StringVar(&memo, "memo", "", "memo attached to the invocation")
	return cmd
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	var params, network string

	cmd := &cobra.Command{
		Use:   "get <action>",
		Short: "Print the input form for an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, b backend, _ *slog.Logger) (string, error) {
				return b.Invoke(ctx, demoactions.Call{
					Operation: demoactions.OpGet,
					Action:    args[0],
					Params:    params,
					Network:   network,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&params, "params", "p", "{}", "JSON parameter document")
	cmd.Flags().StringVarP(&network, "network", "n", "testnet", "network the form is rendered for")
	return cmd
}

// run opens a backend, calls fn and prints the document it returns.
func (o *rootOptions) run(cmd *cobra.Command, fn func(context.Context, backend, *slog.Logger) (string, error)) error {
	ctx := cmd.Context()
	logger := o.logger(cmd)

	b, err := o.openBackend(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(ctx); err != nil {
			logger.Warn("failed to close module", "error", err)
		}
	}()

	out, err := fn(ctx, b, logger)
	if err != nil {
		return err
	}
	return o.writeDocument(cmd.OutOrStdout(), []byte(out))
}

// resolveGrants asks the gatekeeper for the capabilities action needs on
// network. known is false when the module does not declare action.
func (o *rootOptions) resolveGrants(
	cmd *cobra.Command,
	logger *slog.Logger,
	desc *descriptor.ModuleDescriptor,
	action, network string,
) (granted *capability.GrantSet, known bool, err error) {
	required, err := extractor.NewActionExtractor(desc).Extract(action)
	if err != nil {
		return nil, false, nil
	}
	scopeToNetwork(required, network)

	gk, err := o.gatekeeper(cmd, logger)
	if err != nil {
		return nil, true, err
	}
	info := map[string]capability.CapabilityInfo{
		action: {PluginName: abi.DefaultPluginName, Action: action},
	}
	granted, err = gk.GrantCapabilities(required, info, o.trustPlugin)
	return granted, true, err
}

func (o *rootOptions) gatekeeper(cmd *cobra.Command, logger *slog.Logger) (*gatekeeper.Gatekeeper, error) {
	level, err := gatekeeper.ParseSecurityLevel(o.securityLevel)
	if err != nil {
		return nil, err
	}
	return gatekeeper.NewGatekeeper(
		gatekeeper.WithStore(o.grantStore()),
		gatekeeper.WithPrompter(gatekeeper.NewTerminalPrompter(gatekeeper.WithOutput(cmd.ErrOrStderr()))),
		gatekeeper.WithSecurityLevel(level),
		gatekeeper.WithLogger(logger),
	), nil
}

func (o *rootOptions) grantStore() *grantstore.FileStore {
	if o.grantsPath == "" {
		return grantstore.NewFileStore()
	}
	return grantstore.NewFileStore(grantstore.WithPath(o.grantsPath))
}

// scopeToNetwork narrows the declared network grant to the one network an
// invocation touches. A network the module never declared is not requested,
// so the capability check rejects it.
func scopeToNetwork(required *capability.GrantSet, network string) {
	if required.Network == nil {
		return
	}
	if network == "" || !capability.Covers(required.Network.Networks, network) {
		required.Network = nil
		return
	}
	required.Network.Networks = []string{network}
}
