package cli

import (
	"fmt"

	"github.com/canopy-network/omniroute/app"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/fixed"
	"github.com/canopy-network/omniroute/oracle"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query the router state",
}

var (
	height     uint64
	queryRoute string
	period     string
)

func init() {
	queryCmd.PersistentFlags().Uint64Var(&height, "height", 0, "height of the events to query, 0 is the last applied block")
	queryCmd.PersistentFlags().StringVar(&queryRoute, "route", "", "explicit route as pool:in->out hops, the route of the pair if empty")
	queryCmd.PersistentFlags().StringVar(&period, "period", oracle.TenMinutes.String(), "oracle period: lastBlock, short, tenMinutes, hour, day or week")
	queryCmd.AddCommand(heightCmd)
	queryCmd.AddCommand(assetsCmd)
	queryCmd.AddCommand(balanceCmd)
	queryCmd.AddCommand(eventsCmd)
	queryCmd.AddCommand(routeCmd)
	queryCmd.AddCommand(spotPriceCmd)
	queryCmd.AddCommand(oracleCmd)
	queryCmd.AddCommand(weightCmd)
	queryCmd.AddCommand(powCmd)
}

var (
	heightCmd = &cobra.Command{
		Use:   "height",
		Short: "query the number of committed blocks, genesis included",
		Run: func(cmd *cobra.Command, args []string) {
			a, closeDB := loadApp(nil)
			defer closeDB()
			writeToConsole(a.Height(), nil)
		},
	}

	assetsCmd = &cobra.Command{
		Use:   "assets",
		Short: "query the asset registry",
		Run: func(cmd *cobra.Command, args []string) {
			a, closeDB := loadInitializedApp(nil)
			defer closeDB()
			writeToConsole(a.Assets())
		},
	}

	balanceCmd = &cobra.Command{
		Use:     "balance <address or name>",
		Short:   "query every balance of an account",
		Example: "balance bob",
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, closeDB := loadInitializedApp(nil)
			defer closeDB()
			writeToConsole(a.Balances(fsm.AddressOf(args[0])))
		},
	}

	eventsCmd = &cobra.Command{
		Use:   "events --height=1",
		Short: "query the events recorded by a block",
		Run: func(cmd *cobra.Command, args []string) {
			a, closeDB := loadInitializedApp(nil)
			defer closeDB()
			h := height
			if h == 0 {
				h = a.Height() - 1
			}
			writeToConsole(a.Events(h))
		},
	}

	routeCmd = &cobra.Command{
		Use:   "route <asset-in> <asset-out>",
		Short: "query the route a trade of the pair takes when no route is given",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a, closeDB := loadInitializedApp(nil)
			defer closeDB()
			route, stored, err := a.Route(lib.NewAssetPair(argToAsset(args[0]), argToAsset(args[1])))
			writeToConsole(routeResponse{Route: route, Stored: stored}, err)
		},
	}

	spotPriceCmd = &cobra.Command{
		Use:   "spot-price <asset-in> <asset-out> --route=...",
		Short: "query the fee adjusted cost of one asset out in asset in along a route",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			route, err := lib.ParseRoute(queryRoute)
			if err != nil {
				writeToConsole(nil, err)
				return
			}
			a, closeDB := loadInitializedApp(nil)
			defer closeDB()
			price, err := a.SpotPrice(lib.NewAssetPair(argToAsset(args[0]), argToAsset(args[1])), route)
			writeToConsole(fixedString(price), err)
		},
	}

	oracleCmd = &cobra.Command{
		Use:     "oracle <source> <asset-in> <asset-out> --period=tenMinutes",
		Short:   "query the moving average cost of one asset out in asset in reported by a pool kind",
		Example: "oracle omnipool 1 0 --period=lastBlock",
		Args:    cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := oracle.ParsePeriod(period)
			if err != nil {
				writeToConsole(nil, err)
				return
			}
			a, closeDB := loadInitializedApp(nil)
			defer closeDB()
			price, err := a.OraclePrice(args[0], argToAsset(args[1]), argToAsset(args[2]), p)
			writeToConsole(fixedString(price), err)
		},
	}

	weightCmd = &cobra.Command{
		Use:   "weight <sell|buy|sell-all|set-route> --route=...",
		Short: "query the declared weight of a router call",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			route, err := lib.ParseRoute(queryRoute)
			if err != nil {
				writeToConsole(nil, err)
				return
			}
			a, closeDB := loadApp(nil)
			defer closeDB()
			var msg app.MessageI
			switch args[0] {
			case "sell":
				msg = &app.MessageSell{Route: route}
			case "buy":
				msg = &app.MessageBuy{Route: route}
			case "sell-all":
				msg = &app.MessageSellAll{Route: route}
			case "set-route":
				msg = &app.MessageSetRoute{Route: route}
			default:
				writeToConsole(nil, fmt.Errorf("unknown router call %q", args[0]))
				return
			}
			writeToConsole(a.WeightOf(msg), nil)
		},
	}

	powCmd = &cobra.Command{
		Use:     "pow <base> <exponent>",
		Short:   "evaluate base^exponent in the fixed point arithmetic of the pools",
		Example: "pow 0.5 2.5",
		Args:    cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			base, err := fixed.Parse(args[0])
			if err != nil {
				writeToConsole(nil, err)
				return
			}
			exponent, err := fixed.Parse(args[1])
			if err != nil {
				writeToConsole(nil, err)
				return
			}
			result, err := fixed.Pow(base, exponent)
			writeToConsole(fixedString(result), err)
		},
	}
)

type routeResponse struct {
	Route  lib.Route `json:"route"`
	Stored bool      `json:"stored"`
}

func fixedString(f fixed.Fixed) string { return f.String() }
