package main

import (
	"github.com/spf13/cobra"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
	"github.com/awantoch/contentkit/templater"
	"github.com/awantoch/contentkit/utils"
)

// newEvalCmd creates the 'eval' subcommand.
func newEvalCmd() *cobra.Command {
	var varsPath, varsJSON string
	var asYAML, strict bool
	cmd := &cobra.Command{
		Use:   constants.CmdEval + " [file]",
		Short: constants.DescEval,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				utils.Error("%v", err)
				exit(constants.ExitBadInput)
				return
			}
			doc, err := convert.Decode(data)
			if err != nil {
				utils.Error("failed to parse document: %v", err)
				exit(constants.ExitBadInput)
				return
			}
			vars, err := loadVars(varsPath, varsJSON)
			if err != nil {
				utils.Error("%v", err)
				exit(constants.ExitBadInput)
				return
			}

			var opts []templater.RenderOption
			if strict {
				opts = append(opts, templater.WithStrictEvaluation())
			}
			out, err := templater.EvaluateObject(doc, vars, opts...)
			if err != nil {
				exitForTemplateError(err)
				return
			}
			encode := convert.Encode
			if asYAML {
				encode = convert.EncodeYAML
			}
			encoded, err := encode(out)
			if err != nil {
				utils.Error(constants.ErrMarshalFailed, err)
				exit(constants.ExitBadInput)
				return
			}
			utils.User("%s", encoded)
		},
	}
	cmd.Flags().StringVar(&varsPath, "vars", "", "Path to variables file (JSON or YAML)")
	cmd.Flags().StringVar(&varsJSON, "vars-json", "", "Variables as an inline JSON object")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write the result as YAML")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on evaluation errors instead of embedding the content parsing marker")
	return cmd
}
