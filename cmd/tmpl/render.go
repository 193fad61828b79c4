package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/templater"
	"github.com/awantoch/contentkit/utils"
)

// newRenderCmd creates the 'render' subcommand.
func newRenderCmd() *cobra.Command {
	var varsPath, varsJSON, name string
	var noEscape, strict bool
	cmd := &cobra.Command{
		Use:   constants.CmdRender + " [template]",
		Short: constants.DescRender,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			vars, err := loadVars(varsPath, varsJSON)
			if err != nil {
				utils.Error("%v", err)
				exit(constants.ExitBadInput)
				return
			}
			var opts []templater.RenderOption
			if noEscape {
				opts = append(opts, templater.WithoutAutoescape())
			}
			if strict {
				opts = append(opts, templater.WithStrictEvaluation())
			}

			var out string
			if name != "" {
				out, err = renderNamed(cmd, name, vars, opts)
			} else {
				out, err = renderInline(cmd, args, vars, opts)
			}
			if err != nil {
				exitForTemplateError(err)
				return
			}
			utils.User("%s", out)
		},
	}
	cmd.Flags().StringVar(&varsPath, "vars", "", "Path to variables file (JSON or YAML)")
	cmd.Flags().StringVar(&varsJSON, "vars-json", "", "Variables as an inline JSON object")
	cmd.Flags().StringVar(&name, "name", "", "Render a template file from the templates directory")
	cmd.Flags().BoolVar(&noEscape, "no-escape", false, "Disable HTML autoescaping")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on evaluation errors instead of printing the content parsing marker")
	return cmd
}

func renderInline(cmd *cobra.Command, args []string, vars map[string]any, opts []templater.RenderOption) (string, error) {
	var tmpl string
	if len(args) > 0 {
		tmpl = args[0]
	} else {
		data, err := readInput(nil, cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		tmpl = strings.TrimSuffix(string(data), "\n")
	}
	return templater.ParseString(tmpl, vars, opts...)
}

func renderNamed(cmd *cobra.Command, name string, vars map[string]any, opts []templater.RenderOption) (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", configError{fmt.Errorf("failed to load config: %w", err)}
	}
	env, err := templater.NewEnvironmentFromConfig(cmd.Context(), cfg.Templates)
	if err != nil {
		return "", configError{fmt.Errorf("failed to create template environment: %w", err)}
	}
	utils.Debug("template search path: %v", env.SearchPath())
	return env.RenderTemplate(name, vars, opts...)
}

// configError marks failures caused by configuration rather than input.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

// exitForTemplateError maps a render error onto the CLI exit codes.
func exitForTemplateError(err error) {
	utils.Error("%v", err)
	var cfgErr configError
	switch {
	case errors.As(err, &cfgErr):
		exit(constants.ExitConfig)
	case templater.IsSyntaxError(err):
		exit(constants.ExitSyntaxError)
	case templater.IsEvaluationError(err):
		exit(constants.ExitEvaluationError)
	default:
		exit(constants.ExitBadInput)
	}
}
