package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vmxio.com/numlab/internal/numsys"
)

var (
	convertFrom  int
	convertTo    int
	convertWidth int

	complementMode  string
	complementBase  int
	complementWidth int
)

var convertCmd = &cobra.Command{
	Use:   "convert VALUE",
	Short: "Convert a numeral between bases 2, 8, 10 and 16",
	Example: `  numlab convert 255 --to 16
  numlab convert 1F --from 16 --to 2 --width 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := numsys.ParseRadix(convertFrom)
		if err != nil {
			return err
		}
		to, err := numsys.ParseRadix(convertTo)
		if err != nil {
			return err
		}
		v, err := numsys.Parse(args[0], from)
		if err != nil {
			return err
		}
		if convertWidth > 0 && to == numsys.Binary {
			bits, err := numsys.ToBits(v, convertWidth)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bits)
			return nil
		}
		out, err := numsys.Render(v, to)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var complementCmd = &cobra.Command{
	Use:   "complement BITS",
	Short: "Show the one's and two's complement of a bit string",
	Example: `  numlab complement 0101
  numlab complement 1000 --mode twos
  numlab complement 7F --base 16 --width 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bv, err := readBits(args[0], numsys.Radix(complementBase), complementWidth)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		switch complementMode {
		case "ones":
			fmt.Fprintln(w, bv.Invert())
		case "twos":
			fmt.Fprintln(w, bv.TwosComplement())
		case "", "both":
			fmt.Fprintf(w, "bits      %s\n", bv)
			fmt.Fprintf(w, "ones      %s\n", bv.Invert())
			fmt.Fprintf(w, "twos      %s\n", bv.TwosComplement())
			fmt.Fprintf(w, "unsigned  %d\n", numsys.FromBits(bv))
			fmt.Fprintf(w, "signed    %d\n", bv.SignedValue())
		default:
			return fmt.Errorf("unknown mode %q (ones, twos or both)", complementMode)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().IntVar(&convertFrom, "from", 10, "source base (2, 8, 10, 16)")
	convertCmd.Flags().IntVar(&convertTo, "to", 2, "target base (2, 8, 10, 16)")
	convertCmd.Flags().IntVar(&convertWidth, "width", 0, "pad binary output to this many bits")

	complementCmd.Flags().StringVar(&complementMode, "mode", "both", "ones, twos or both")
	complementCmd.Flags().IntVar(&complementBase, "base", 2, "read BITS as base 2, 8 or 16 digits")
	complementCmd.Flags().IntVar(&complementWidth, "width", 0, "bit width for octal and hex input (0 keeps every digit)")
}
