package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
	"github.com/awantoch/contentkit/templater"
	"github.com/awantoch/contentkit/utils"
)

// newFilterCmd creates the 'filter' subcommand.
func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdFilter + " <name> <json-value>",
		Short: constants.DescFilter,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			value, err := convert.Decode([]byte(args[1]))
			if err != nil {
				utils.Error("failed to parse value: %v", err)
				exit(constants.ExitBadInput)
				return
			}
			out, err := templater.ApplyFilter(args[0], value)
			if err != nil {
				utils.Error("%v", err)
				if errors.Is(err, templater.ErrUnknownFilter) {
					exit(constants.ExitBadInput)
					return
				}
				exit(constants.ExitFilterError)
				return
			}
			utils.User("%s", fmt.Sprint(out))
		},
	}
}

// newFiltersCmd creates the 'filters' subcommand.
func newFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdFilters,
		Short: constants.DescFilters,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range templater.FilterNames() {
				utils.User("%s", name)
			}
		},
	}
}
