package cmd

import (
	"synthd/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// seed a holder balance on the reference token ledger, for local setups
var fundCmd = &cobra.Command{
	Use:   "fund <holder> <asset> <amount>",
	Short: "seed a token ledger balance",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			cmd.PrintErrln("invalid amount:", err)
			return
		}

		database := provideDatabase()
		defer database.Close()

		tokens := provideTokenStore(database)
		if err := tokens.Credit(ctx, args[0], args[1], number.FromDecimal(amount).Int()); err != nil {
			cmd.PrintErrln("fund error:", err)
			return
		}

		cmd.Println("funded", args[0], args[1], amount)
	},
}

func init() {
	rootCmd.AddCommand(fundCmd)
}
