package cli

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/canopy-network/omniroute/app"
	"github.com/canopy-network/omniroute/dex/omnipool"
	"github.com/canopy-network/omniroute/lib"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "apply a single message as the next block",
}

var (
	routeFlag, minOut, maxIn string
	wait                     bool
)

func init() {
	txCmd.PersistentFlags().StringVar(&routeFlag, "route", "", "explicit route as pool:in->out hops, e.g. omnipool:2->0,xyk:0->4")
	txCmd.PersistentFlags().StringVar(&minOut, "min-out", "0", "the minimum amount out of a sell")
	txCmd.PersistentFlags().StringVar(&maxIn, "max-in", "", "the maximum amount in of a buy, unlimited if empty")
	runCmd.Flags().BoolVar(&wait, "wait", false, "keep the metrics server up after the last block until a kill signal is received")
	txCmd.AddCommand(txSellCmd)
	txCmd.AddCommand(txBuyCmd)
	txCmd.AddCommand(txSellAllCmd)
	txCmd.AddCommand(txSetRouteCmd)
	txCmd.AddCommand(txTradableCmd)
	txCmd.AddCommand(txAddLiquidityCmd)
	rootCmd.AddCommand(runCmd)
}

var (
	txSellCmd = &cobra.Command{
		Use:     "sell <signer> <asset-in> <asset-out> <amount-in> --min-out=1 --route=...",
		Short:   "sell an exact amount of asset in",
		Example: "sell bob 2 0 1000000000000",
		Args:    cobra.MinimumNArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			applyMessage(&app.MessageSell{
				Signer:       args[0],
				AssetIn:      argToAsset(args[1]),
				AssetOut:     argToAsset(args[2]),
				AmountIn:     argToBalance(args[3]),
				MinAmountOut: argToBalance(minOut),
				Route:        getRoute(),
			})
		},
	}

	txBuyCmd = &cobra.Command{
		Use:     "buy <signer> <asset-in> <asset-out> <amount-out> --max-in=1000 --route=...",
		Short:   "buy an exact amount of asset out",
		Example: "buy bob 2 0 1000000000000 --max-in=600000000000",
		Args:    cobra.MinimumNArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			maxAmountIn := lib.MaxBalance()
			if maxIn != "" {
				maxAmountIn = argToBalance(maxIn)
			}
			applyMessage(&app.MessageBuy{
				Signer:      args[0],
				AssetIn:     argToAsset(args[1]),
				AssetOut:    argToAsset(args[2]),
				AmountOut:   argToBalance(args[3]),
				MaxAmountIn: maxAmountIn,
				Route:       getRoute(),
			})
		},
	}

	txSellAllCmd = &cobra.Command{
		Use:   "sell-all <signer> <asset-in> <asset-out> --min-out=1 --route=...",
		Short: "sell the whole spendable balance of asset in",
		Args:  cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			applyMessage(&app.MessageSellAll{
				Signer:       args[0],
				AssetIn:      argToAsset(args[1]),
				AssetOut:     argToAsset(args[2]),
				MinAmountOut: argToBalance(minOut),
				Route:        getRoute(),
			})
		},
	}

	txSetRouteCmd = &cobra.Command{
		Use:     "set-route <signer> <asset-a> <asset-b> --route=...",
		Short:   "propose a stored route for the pair; replaces the stored one only if strictly cheaper both ways",
		Example: "set-route bob 2 4 --route=omnipool:2->0,xyk:0->4",
		Args:    cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			applyMessage(&app.MessageSetRoute{
				Signer: args[0],
				Pair:   lib.NewAssetPair(argToAsset(args[1]), argToAsset(args[2])),
				Route:  getRoute(),
			})
		},
	}

	txTradableCmd = &cobra.Command{
		Use:     "set-tradable <signer> <asset> <flags>",
		Short:   "replace the omnipool tradable flags of an asset: 1 sell, 2 buy, 4 add liquidity, 8 remove liquidity",
		Example: "set-tradable alice 2 15",
		Args:    cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			applyMessage(&app.MessageSetTradableState{
				Signer:   args[0],
				Asset:    argToAsset(args[1]),
				Tradable: omnipool.Tradability(argToUint(args[2], 8)),
			})
		},
	}

	txAddLiquidityCmd = &cobra.Command{
		Use:   "xyk-add-liquidity <signer> <asset-a> <asset-b> <amount-a> <max-amount-b>",
		Short: "deposit into an xyk pool at the pool ratio",
		Args:  cobra.MinimumNArgs(5),
		Run: func(cmd *cobra.Command, args []string) {
			applyMessage(&app.MessageXYKAddLiquidity{
				Signer:     args[0],
				AssetA:     argToAsset(args[1]),
				AssetB:     argToAsset(args[2]),
				AmountA:    argToBalance(args[3]),
				MaxAmountB: argToBalance(args[4]),
			})
		},
	}

	runCmd = &cobra.Command{
		Use:   "run <blocks.json> --wait",
		Short: "apply a JSON array of blocks in order, serving metrics if enabled",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			blocks, err := app.ReadBlocksFromFile(args[0])
			if err != nil {
				writeToConsole(nil, err)
				return
			}
			metrics := lib.NewMetricsServer(config.MetricsConfig, l)
			metrics.Start()
			defer metrics.Stop()
			a, closeDB := loadInitializedApp(metrics)
			defer closeDB()
			var results []*app.BlockResult
			for _, b := range blocks {
				result, e := a.ApplyBlock(b)
				if e != nil {
					writeToConsole(nil, e)
					return
				}
				results = append(results, result)
			}
			writeToConsole(results, nil)
			if wait {
				waitForKill()
			}
		},
	}
)

// applyMessage() wraps the message in a block of its own and prints the block result
func applyMessage(msg app.MessageI) {
	m, err := app.NewMessage(msg)
	if err != nil {
		writeToConsole(nil, err)
		return
	}
	a, closeDB := loadInitializedApp(nil)
	defer closeDB()
	result, err := a.ApplyBlock(&app.Block{Messages: []*app.Message{m}})
	if err != nil {
		writeToConsole(nil, err)
		return
	}
	writeToConsole(result, nil)
}

// waitForKill() blocks until a kill signal is received
func waitForKill() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	// block until kill signal is received
	s := <-stop
	l.Infof("Exit command %s received", s)
}

func getRoute() lib.Route {
	route, err := lib.ParseRoute(routeFlag)
	if err != nil {
		l.Fatal(err.Error())
	}
	return route
}

func argToAsset(arg string) lib.AssetId { return lib.AssetId(argToUint(arg, 32)) }

func argToUint(arg string, bits int) uint64 {
	u, err := strconv.ParseUint(arg, 10, bits)
	if err != nil {
		l.Fatal(err.Error())
	}
	return u
}

func argToBalance(arg string) lib.Balance {
	b, err := lib.NewBalanceFromString(arg)
	if err != nil {
		l.Fatal(err.Error())
	}
	return b
}
