package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/leodido/structcli"
	"github.com/leodido/x86features"
	"github.com/olekukonko/tablewriter"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "x86features",
		Short: "x86 instruction-set extension detection",
		Long: `x86features reports which instruction-set extensions (MMX through AVX-512,
BMI, SHA, AES-NI, ...) the host processor implements, and whether the operating
system has enabled the register state needed to use AVX and AVX-512 safely.

Run without a subcommand to print the full report.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			fs := x86features.HostNoCache()
			_, err := fs.WriteTo(c.OutOrStdout())
			return err
		},
	}

	root.AddCommand(detectCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(bitsCmd())
	root.AddCommand(versionCmd())

	return root
}

// DetectOptions defines flags for the detect subcommand.
type DetectOptions struct {
	JSON bool `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *DetectOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

// detectReport is the JSON shape of the detect subcommand.
type detectReport struct {
	x86features.FeatureSet
	SafeToUseAVX    bool `json:"safe_avx"`
	SafeToUseAVX512 bool `json:"safe_avx512"`
}

func detectCmd() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect processor and OS features and display the report",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			fs := x86features.HostNoCache()

			if opts.JSON {
				return printJSON(c.OutOrStdout(), detectReport{
					FeatureSet:      fs,
					SafeToUseAVX:    fs.SafeAVX(),
					SafeToUseAVX512: fs.SafeAVX512(),
				})
			}

			_, err := fs.WriteTo(c.OutOrStdout())
			return err
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	Require featureRequirements `flag:"require" flagshort:"r" flagdescr:"Required features (see available features above)" flagrequired:"true" flagcustom:"true"`
	JSON    bool                `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *CheckOptions) DefineRequire(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*featureRequirements)
	*fieldPtr = nil
	return fieldPtr, descr
}

func (o *CheckOptions) DecodeRequire(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseFeatureRequirements(s)
}

// CompleteRequire completes the comma-separated --require list.
func (o *CheckOptions) CompleteRequire(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	current := toComplete
	selected := make(map[string]bool)
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		current = toComplete[i+1:]
		for _, s := range strings.Split(toComplete[:i], ",") {
			selected[strings.ToLower(strings.TrimSpace(s))] = true
		}
	}

	current = strings.ToLower(current)
	var candidates []string
	for _, name := range x86features.FeatureNames() {
		if selected[name] || !strings.HasPrefix(name, current) {
			continue
		}
		candidates = append(candidates, prefix+name)
	}

	return candidates, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func checkCmd() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that specific features are usable",
		Long:  checkLongDescription(),
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(opts.Require) == 0 {
				return fmt.Errorf("no features specified")
			}

			requirements := make([]x86features.Requirement, 0, len(opts.Require))
			for _, f := range opts.Require {
				requirements = append(requirements, f)
			}

			err := x86features.HostNoCache().Check(requirements...)
			if err != nil {
				var fe *x86features.FeatureError
				if !errors.As(err, &fe) {
					return err
				}
				if opts.JSON {
					if err := printJSON(c.OutOrStdout(), map[string]any{
						"ok":      false,
						"feature": fe.Feature,
						"reason":  fe.Reason,
					}); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(c.ErrOrStderr(), "FAIL: %s — %s\n", fe.Feature, fe.Reason)
				}
				os.Exit(1)
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), map[string]any{"ok": true})
			}
			fmt.Fprintln(c.OutOrStdout(), "OK: all requirements satisfied")
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// BitsOptions defines flags for the bits subcommand.
type BitsOptions struct {
	All bool `flag:"all" flagshort:"a" flagdescr:"Include vendor and OS flags that have no CPUID bit"`
}

func (o *BitsOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func bitsCmd() *cobra.Command {
	opts := &BitsOptions{}

	cmd := &cobra.Command{
		Use:   "bits",
		Short: "Show the CPUID bit layout next to the detected values",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			renderBits(c.OutOrStdout(), x86features.HostNoCache(), opts.All)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func renderBits(w io.Writer, fs x86features.FeatureSet, all bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Feature", "Leaf", "Register", "Bit", "Detected", "Usable"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, f := range x86features.FeatureValues() {
		b, ok := x86features.BitFor(f)
		if !ok && !all {
			continue
		}
		row := []string{f.String(), "-", "-", "-", yesNo(fs.Has(f)), yesNo(fs.Usable(f))}
		if ok {
			row[1] = fmt.Sprintf("0x%08X", b.Leaf)
			row[2] = b.Register.String()
			row[3] = strconv.FormatUint(uint64(b.Index), 10)
		}
		table.Append(row)
	}

	table.Render()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool version and processor vendor",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(out, "x86features %s", version)
				if commit != "" {
					fmt.Fprintf(out, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(out, " built %s", date)
				}
				fmt.Fprintln(out)
			} else {
				fmt.Fprintln(out, "x86features (dev)")
			}

			fmt.Fprintf(out, "CPU vendor: %s\n", x86features.Host().Vendor())
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func availableFeatures() string {
	return strings.Join(x86features.FeatureNames(), ", ")
}

func checkLongDescription() string {
	return fmt.Sprintf(`Check that the processor implements all required features and that the
operating system has enabled the register state they need.
Exits with code 0 if all requirements are met, 1 if any are missing.

Available features:
%s`, formatWrappedList(x86features.FeatureNames(), "  ", 80))
}

func formatWrappedList(items []string, indent string, maxWidth int) string {
	if len(items) == 0 {
		return indent + "(none)"
	}

	lines := make([]string, 0, len(items))
	line := indent
	for i, item := range items {
		token := item
		if i < len(items)-1 {
			token += ", "
		}

		if len(line)+len(token) > maxWidth && line != indent {
			lines = append(lines, strings.TrimRight(line, " "))
			line = indent + token
			continue
		}

		line += token
	}

	lines = append(lines, strings.TrimRight(line, " "))
	return strings.Join(lines, "\n")
}

type featureRequirements []x86features.Feature

var featureIdentifierMap = func() map[x86features.Feature][]string {
	ids := make(map[x86features.Feature][]string, len(x86features.FeatureValues()))
	for _, f := range x86features.FeatureValues() {
		ids[f] = []string{f.String()}
	}
	return ids
}()

func (r *featureRequirements) String() string {
	names := make([]string, 0, len(*r))
	for _, f := range *r {
		names = append(names, f.String())
	}

	return strings.Join(names, ",")
}

func (r *featureRequirements) Set(input string) error {
	features, err := parseFeatureRequirements(input)
	if err != nil {
		return err
	}

	*r = append(*r, features...)
	return nil
}

func (r *featureRequirements) Type() string {
	return "feature"
}

func parseFeatureRequirements(input string) (featureRequirements, error) {
	if strings.TrimSpace(input) == "" {
		return featureRequirements{}, nil
	}

	parts := strings.Split(input, ",")
	features := make(featureRequirements, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		var feature x86features.Feature
		enumValue := enumflag.New(&feature, "x86features.Feature", featureIdentifierMap, enumflag.EnumCaseInsensitive)
		if err := enumValue.Set(name); err != nil {
			return nil, fmt.Errorf("unknown feature: %q (available: %s)", name, availableFeatures())
		}

		features = append(features, feature)
	}

	return features, nil
}
