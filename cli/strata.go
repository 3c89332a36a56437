// Package cli contains the lookup command of the command line interface.
package cli

import (
	"context"

	"github.com/lyraproj/dgo/vf"
	sdk "github.com/lyraproj/hierasdk/hiera"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
	"github.com/strataproj/strata/provider"
	"github.com/strataproj/strata/strata"
)

var helpTemplate = `Description:
  {{rpad .Long 10}}

Usage:{{if .Runnable}}{{if .HasAvailableFlags}}
  {{appendIfNotPresent .UseLine "[flags]"}}{{else}}{{.UseLine}}{{end}}{{end}}{{if gt .Aliases 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample }}

Examples:
  {{ .Example }}{{end}}{{ if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{ if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimRightSpace}}{{end}}{{ if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimRightSpace}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsHelpCommand}}
{{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}
`

// OptString is a string option that can differentiate between an empty string and no value
type OptString struct {
	value *string
}

// Type of option
func (s *OptString) Type() string {
	return "stringpointer"
}

// String value
func (s *OptString) String() string {
	if s == nil || s.value == nil {
		return ``
	}
	return *s.value
}

// Set sets the string value
func (s *OptString) Set(v string) error {
	s.value = &v
	return nil
}

// StringPointer returns the internal value pointer
func (s *OptString) StringPointer() *string {
	return s.value
}

var (
	cmdOpts    strata.CommandOptions
	dflt       OptString
	logLevel   string
	configPath string
)

// NewCommand creates the lookup Command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <key> [<key> ...]",
		Short: `Lookup - Perform lookups in tiered data storage`,
		Long: `Lookup - Perform lookups in tiered data storage.
    Find more information at: https://github.com/strataproj/strata`,
		Version: buildVersion(),
		RunE:    cmdLookup,
		Args:    cobra.MinimumNArgs(1)}

	flags := cmd.Flags()
	flags.StringVar(&logLevel, `loglevel`, `error`,
		`error/warn/info/debug`)
	flags.StringVar(&cmdOpts.Merge, `merge`, `first`,
		`first/unique/hash/deep`)
	flags.StringVar(&configPath, `config`, ``,
		`path to the configuration file. Overrides <current directory>/`+config.FileName)
	flags.Var(&dflt, `default`,
		`a value to return when no value is found in data`)
	flags.StringVar(&cmdOpts.Type, `type`, ``,
		`assert that the value has the specified type`)
	flags.StringVar(&cmdOpts.RenderAs, `render-as`, ``,
		`s/json/yaml/binary: Specify the output format of the results; s means plain text`)
	flags.BoolVar(&cmdOpts.ExplainData, `explain`, false,
		`Explain the details of how the lookup was performed and where the final value came from`)
	flags.BoolVar(&cmdOpts.ExplainOptions, `explain-options`, false,
		`Explain whether a lookup_options hash affects this lookup, and how that hash was assembled`)
	flags.StringArrayVar(&cmdOpts.VarPaths, `vars`, nil,
		`path to a JSON or YAML file that contains key-value mappings to become variables for this lookup`)
	flags.StringArrayVar(&cmdOpts.Variables, `var`, nil,
		`a key:value or key=value where value is a literal`)
	flags.StringArrayVar(&cmdOpts.FactPaths, `facts`, nil,
		`like --vars but will also make variables available under the "facts" key`)
	flags.BoolVar(&cmdOpts.LookupAll, `all`, false,
		`lookup all of the keys and output the results as a map`)

	cmd.SetHelpTemplate(helpTemplate)
	return cmd
}

func cmdLookup(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if logLevel != `` {
		lv, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(lv)
	}
	cmdOpts.Default = dflt.StringPointer()
	cfgOpts := vf.MutableMap()
	cfgOpts.Put(
		provider.LookupKeyFunctions, []sdk.LookupKey{provider.ChainLookupKey, provider.Environment})

	if configPath != `` {
		cfgOpts.Put(api.StrataConfig, configPath)
	}

	return strata.TryWithParent(context.Background(), provider.MuxLookupKey, cfgOpts, func(c api.Session) error {
		strata.LookupAndRender(c, &cmdOpts, args, cmd.OutOrStdout())
		return nil
	})
}
