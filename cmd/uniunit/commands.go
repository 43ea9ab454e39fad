package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/json"
	"github.com/ajitpratap0/uniunit/pkg/server"
	"github.com/ajitpratap0/uniunit/pkg/uniunit"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert VALUE",
		Short: "Convert a number between two units",
		Example: `  uniunit convert 1 --from kg --to lb
  uniunit convert 3 --from 斤 --to kg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.Newf(errors.ErrorTypeValidation, "VALUE must be a number, got %q", args[0])
			}
			a, err := newApp(v)
			if err != nil {
				return err
			}
			result, err := uniunit.ConvertValue(a.Registry(), value, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(result, 'g', -1, 64))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source unit (required)")
	cmd.Flags().StringVar(&to, "to", "", "Target unit (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSystemCmd(v *viper.Viper) *cobra.Command {
	var (
		preset  string
		mapping map[string]string
	)

	cmd := &cobra.Command{
		Use:   "system QUANTITY",
		Short: "Express a quantity in a unit system",
		Long: `Express a quantity in a preset unit system or in one given with --map.
--map keys are dimensions (length, [mass], m, kilogram) and values are units.`,
		Example: `  uniunit system "1 J" --preset CGS
  uniunit system "9.81 m/s**2" --map length=foot,time=second`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (preset == "") == (len(mapping) == 0) {
				return errors.New(errors.ErrorTypeValidation, "exactly one of --preset or --map is required")
			}
			a, err := newApp(v)
			if err != nil {
				return err
			}
			q, err := a.Registry().Parse(args[0])
			if err != nil {
				return err
			}

			var result uniunit.Value
			if preset != "" {
				system, err := a.Presets().Get(preset)
				if err != nil {
					return err
				}
				result, err = system.Convert(uniunit.FromQuantity(q))
				if err != nil {
					return err
				}
			} else {
				result, err = uniunit.ToUnit(a.Registry(), uniunit.FromQuantity(q), mapping)
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), uniunit.FormatValue(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&preset, "preset", "p", "", "Preset name (see 'uniunit presets')")
	cmd.Flags().StringToStringVarP(&mapping, "map", "m", nil, "Dimension to unit mapping, e.g. length=mm,mass=g")
	return cmd
}

func newQuickCmd(v *viper.Viper) *cobra.Command {
	var fromSystem, toSystem string

	cmd := &cobra.Command{
		Use:     "quick QUANTITY",
		Short:   "Convert a quantity from one preset system to another",
		Example: `  uniunit quick "100 kg" --from-system SI --to-system Imperial`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(v)
			if err != nil {
				return err
			}
			result, err := uniunit.QuickConvertString(a.Presets(), args[0], fromSystem, toSystem)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uniunit.FormatValue(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromSystem, "from-system", "SI", "Source preset")
	cmd.Flags().StringVar(&toSystem, "to-system", "", "Target preset (required)")
	_ = cmd.MarkFlagRequired("to-system")
	return cmd
}

func newInfoCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "info QUANTITY",
		Short:   "Show the dimensional makeup of a quantity",
		Example: `  uniunit info "101325 Pa"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(v)
			if err != nil {
				return err
			}
			q, err := a.Registry().Parse(args[0])
			if err != nil {
				return err
			}
			info, err := uniunit.UnitInfo(a.Registry(), q)
			if err != nil {
				return err
			}
			enc := json.NewStreamingEncoder(cmd.OutOrStdout())
			enc.SetPretty("  ")
			return enc.Encode(info)
		},
	}
}

func newPresetsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "presets [NAME]",
		Short: "List unit system presets or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, name := range a.Presets().List() {
					preset, _ := a.Presets().Lookup(name)
					fmt.Fprintf(out, "%-10s %s\n", name, preset.Description)
				}
				return nil
			}

			system, err := a.Presets().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %s\n", system.Name, system.Description)
			keys := make([]string, 0, len(system.Units))
			for k := range system.Units {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %-10s -> %s\n", k, system.Units[k])
			}
			return nil
		},
	}
}

func newUnitsCmd(v *viper.Viper) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List common units, or every defined unit with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := server.CommonUnits
			if all {
				a, err := newApp(v)
				if err != nil {
					return err
				}
				names = a.Registry().Units()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every unit in the registry")
	return cmd
}
