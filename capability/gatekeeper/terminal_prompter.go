package gatekeeper

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/reglet-demo-actions/capability"
)

var _ capability.Prompter = (*TerminalPrompter)(nil)

// TerminalPrompter provides interactive terminal prompting for capability grants.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// PrompterOption configures a TerminalPrompter.
type PrompterOption func(*TerminalPrompter)

// WithInput sets the terminal the prompter reads from.
func WithInput(f *os.File) PrompterOption {
	return func(p *TerminalPrompter) {
		if f != nil {
			p.in = f
		}
	}
}

// WithOutput sets where warnings are written.
func WithOutput(w io.Writer) PrompterOption {
	return func(p *TerminalPrompter) {
		if w != nil {
			p.out = w
		}
	}
}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter(opts ...PrompterOption) *TerminalPrompter {
	p := &TerminalPrompter{in: os.Stdin, out: os.Stderr}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := p.in.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptForCapability asks the user to grant a capability.
func (p *TerminalPrompter) PromptForCapability(req capability.Request) (granted bool, always bool, err error) {
	if req.IsBroad {
		fmt.Fprintf(p.out, "\n")
		fmt.Fprintf(p.out, "\033[1;33mSecurity Warning: Broad Permission Requested\033[0m\n\n")
		fmt.Fprintf(p.out, "  %s\n", req.Description)
		fmt.Fprintf(p.out, "  Recommendation: Review if this broad access is necessary.\n")
		fmt.Fprintf(p.out, "\n")
	}

	const (
		OptionYes    = "Yes, grant for this session"
		OptionAlways = "Always grant (save to config)"
		OptionNo     = "No, deny"
	)

	var selection string

	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Plugin Requesting Permission").
			Description(req.Description).
			Options(
				huh.NewOption(OptionYes, OptionYes),
				huh.NewOption(OptionAlways, OptionAlways),
				huh.NewOption(OptionNo, OptionNo),
			).
			Value(&selection),
	)).WithInput(p.in).WithOutput(p.out).Run()
	if err != nil {
		return false, false, err
	}

	switch selection {
	case OptionYes:
		return true, false, nil
	case OptionAlways:
		return true, true, nil
	default:
		return false, false, nil
	}
}

// describeGrantSet returns human-readable descriptions of a GrantSet.
func describeGrantSet(gs *capability.GrantSet) []string {
	var descriptions []string

	if gs.Network != nil && len(gs.Network.Networks) > 0 {
		descriptions = append(descriptions, fmt.Sprintf("Network: networks=%v, operations=%v", gs.Network.Networks, gs.Network.Operations))
	}

	if gs.Transaction != nil && len(gs.Transaction.Types) > 0 {
		limit := "unlimited"
		if gs.Transaction.MaxFeeHbar != nil {
			limit = fmt.Sprintf("%g hbar", *gs.Transaction.MaxFeeHbar)
		}
		descriptions = append(descriptions, fmt.Sprintf("Transactions: types=%v, max fee=%s", gs.Transaction.Types, limit))
	}

	return descriptions
}

// FormatNonInteractiveError creates a helpful error message for non-interactive mode.
func (p *TerminalPrompter) FormatNonInteractiveError(missing *capability.GrantSet) error {
	var msg strings.Builder
	msg.WriteString("Plugin requires additional permissions (running in non-interactive mode)\n\n")
	msg.WriteString("Required permissions:\n")

	for _, d := range describeGrantSet(missing) {
		msg.WriteString(fmt.Sprintf("  - %s\n", d))
	}

	msg.WriteString("\nTo grant these permissions:\n")
	msg.WriteString("  1. Run interactively and approve when prompted\n")
	msg.WriteString("  2. Use --trust-plugin flag (grants all permissions)\n")
	msg.WriteString("  3. Manually edit: ~/.reglet/demo-actions/grants.yaml\n")

	return fmt.Errorf("%s", msg.String())
}
