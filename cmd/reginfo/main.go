// reginfo - authoring tool for Golang register-convention documents.
// It validates documents against the architecture register namespaces,
// renders compiled registries, resolves runtime versions to profiles,
// and diffs two documents semantically.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/redecomp/goreginfo/abi"
	"github.com/redecomp/goreginfo/common"
	log "github.com/redecomp/goreginfo/log"
	"github.com/redecomp/goreginfo/regerrors"
	"github.com/redecomp/goreginfo/registry"
	"github.com/redecomp/goreginfo/regset"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "reginfo",
		Short: "Golang register-convention document tool",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		archName string
		file     string
		logLevel string
		debug    string
	)
	rootCmd.PersistentFlags().StringVar(&archName, "arch", "amd64", "target architecture (amd64, arm64)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "log level")
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "comma-separated log modules to enable")

	initLogging := func() {
		log.InitLogger(logLevel)
		log.EnableModules(debug)
	}

	loadRegistry := func() (*registry.Registry, error) {
		arch, err := regset.ParseArch(archName)
		if err != nil {
			return nil, err
		}
		if file != "" {
			return registry.FromFile(arch, file)
		}
		return registry.Builtin(arch)
	}

	var validateCmd = &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse and compile a register info document, reporting errors",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			initLogging()
			arch, err := regset.ParseArch(archName)
			if err != nil {
				fail(err)
			}
			reg, err := registry.FromFile(arch, args[0])
			if err != nil {
				fail(err)
			}
			fmt.Printf("%s: OK, %d profile(s)\n", args[0], len(reg.Profiles()))
			for _, p := range reg.Profiles() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Render a compiled registry as a tree",
		Run: func(cmd *cobra.Command, args []string) {
			initLogging()
			reg, err := loadRegistry()
			if err != nil {
				fail(err)
			}
			fmt.Print(registryTree(reg).String())
		},
	}
	showCmd.Flags().StringVar(&file, "file", "", "document to show instead of the builtin")

	var selVersion string
	var selectCmd = &cobra.Command{
		Use:   "select",
		Short: "Resolve a runtime version to a profile",
		Run: func(cmd *cobra.Command, args []string) {
			initLogging()
			reg, err := loadRegistry()
			if err != nil {
				fail(err)
			}
			p, err := reg.Select(selVersion)
			if err != nil {
				fail(err)
			}
			fmt.Print(p.Describe())
		},
	}
	selectCmd.Flags().StringVar(&selVersion, "version", "", "runtime version, e.g. 1.18 or go1.18.3")
	selectCmd.Flags().StringVar(&file, "file", "", "document to select from instead of the builtin")
	selectCmd.MarkFlagRequired("version")

	var diffCmd = &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Diff two register info documents",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			initLogging()
			if err := diffDocuments(args[0], args[1]); err != nil {
				fail(err)
			}
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			commit := Commit
			if commit == "none" {
				commit = common.GetCommitHash()
			}
			fmt.Printf("reginfo %s (commit %s, built %s)\n", Version, commit, BuildTime)
		},
	}

	rootCmd.AddCommand(validateCmd, showCmd, selectCmd, diffCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(err error) {
	if code := regerrors.GetErrorCode(err); code != "" {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", code, err)
	} else {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(1)
}

func registryTree(reg *registry.Registry) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(string(reg.Arch()))
	for _, p := range reg.Profiles() {
		label := p.Versions.String()
		if fb := reg.Fallback(); fb == p {
			label += " (fallback)"
		}
		branch := tree.AddBranch(label)
		branch.AddNode(fmt.Sprintf("int args:   %s", regList(p.IntArgRegs)))
		branch.AddNode(fmt.Sprintf("float args: %s", regList(p.FloatArgRegs)))
		branch.AddNode(fmt.Sprintf("stack:      offset=%d maxalign=%d", p.StackInitialOffset, p.StackMaxAlign))
		roles := branch.AddBranch("roles")
		addRole(roles, "current goroutine", p.CurrentGoroutine)
		addRole(roles, "zero register", p.ZeroReg)
		addRole(roles, "closure context", p.ClosureContext)
		if p.DuffZero != nil {
			dz := fmt.Sprintf("duffzero: dest=%s", p.DuffZero.Dest)
			if p.DuffZero.ZeroSrc != nil {
				dz += fmt.Sprintf(" zero=%s kind=%s", *p.DuffZero.ZeroSrc, p.DuffZero.ZeroKind)
			}
			roles.AddNode(dz)
		}
	}
	return tree
}

func addRole(branch treeprint.Tree, name string, r *abi.Register) {
	if r == nil {
		return
	}
	branch.AddNode(fmt.Sprintf("%s: %s", name, *r))
}

func regList(regs []abi.Register) string {
	if len(regs) == 0 {
		return "(stack)"
	}
	out := ""
	for i, r := range regs {
		if i > 0 {
			out += ","
		}
		out += string(r)
	}
	return out
}

func diffDocuments(pathA, pathB string) error {
	jsonA, err := documentJSON(pathA)
	if err != nil {
		return err
	}
	jsonB, err := documentJSON(pathB)
	if err != nil {
		return err
	}

	differ := gojsondiff.New()
	delta, err := differ.Compare(jsonA, jsonB)
	if err != nil {
		return fmt.Errorf("diffing documents: %w", err)
	}
	if !delta.Modified() {
		fmt.Println("documents are identical")
		return nil
	}

	var leftObj interface{}
	if err := json.Unmarshal(jsonA, &leftObj); err != nil {
		return err
	}
	cfg := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       true,
	}
	asciiFmt := formatter.NewAsciiFormatter(leftObj, cfg)
	out, err := asciiFmt.Format(delta)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func documentJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := abi.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return json.Marshal(doc)
}
