package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/retroterm/codepage"
)

// errReplaced signals that conversion succeeded but some characters could
// not be mapped exactly and were replaced with '?' or a 7-bit ASCII stand-in.
var errReplaced = errors.New("some characters could not be mapped")

func rootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "dosconv",
		Short: "Convert text between UTF-8 and single-byte DOS code pages",
		Long: `dosconv converts text between UTF-8 and single-byte DOS code pages.

Mapping tables are assembled from a resource directory holding the main
configuration (MAIN.TXT), the ASCII fallback table, the decomposition rules
and any per-code-page mapping files referenced from the configuration.

Flags can also be set through DOSCONV_* environment variables, e.g.
DOSCONV_CODEPAGE=852.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.String("resources", "resources", "resource directory holding the mapping files")
	flags.Uint16("codepage", 437, "code page to convert to/from (0 = ASCII fallback only)")

	root.AddCommand(encodeCommand(v))
	root.AddCommand(decodeCommand(v))
	root.AddCommand(listCommand(v))
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix("DOSCONV")
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

func converter(v *viper.Viper) *codepage.Converter {
	return codepage.NewConverter(codepage.Env{
		ResourceDir: v.GetString("resources"),
	})
}

// readInput concatenates the named files, or reads stdin when no files are
// given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(cmd.InOrStdin())
	}
	var data []byte
	for _, name := range args {
		chunk, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		data = append(data, chunk...)
	}
	return data, nil
}

func encodeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file...]",
		Short: "Convert UTF-8 input to DOS code page bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, ok := converter(v).UTF8ToDOSCodePage(string(data), v.GetUint16("codepage"))
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			if !ok {
				return errReplaced
			}
			return nil
		},
	}
}

func decodeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file...]",
		Short: "Convert DOS code page bytes to UTF-8",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := converter(v).DOSToUTF8CodePage(data, v.GetUint16("codepage"))
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func listCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the code pages defined by the resource set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range converter(v).CodePages() {
				if info.DuplicateOf != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%5d duplicates %d\n", info.Number, info.DuplicateOf)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%5d\n", info.Number)
			}
			return nil
		},
	}
}
