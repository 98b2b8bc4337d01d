package main

import (
	"github.com/urfave/cli/v2"
)

var createOrderCmd = cli.Command{
	Name:  "createorder",
	Usage: "create a new order, escrowing its sending amount plus fee",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "owner", Usage: "the account placing the order", Required: true},
		&cli.StringFlag{Name: "asset_from", Usage: "the asset sent by the owner", Required: true},
		&cli.StringFlag{Name: "asset_to", Usage: "the asset received by the owner", Required: true},
		&cli.Uint64Flag{Name: "amount_from", Usage: "the total amount sent", Required: true},
		&cli.Uint64Flag{Name: "amount_to", Usage: "the total amount expected back", Required: true},
		&cli.StringFlag{Name: "kind", Usage: "market or limit", Value: "limit"},
		&cli.UintFlag{Name: "slippage_bps", Usage: "the price tolerance in basis points"},
		&cli.BoolFlag{Name: "market_maker", Usage: "mark the owner as market maker"},
	},
	Action: createOrderAction,
}

var getOrderCmd = cli.Command{
	Name:      "order",
	Usage:     "get an order by id",
	ArgsUsage: "<order_id>",
	Action:    getOrderAction,
}

var listOrdersCmd = cli.Command{
	Name:  "listorders",
	Usage: "list the open orders of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "owner", Usage: "the account to list orders for", Required: true},
	},
	Action: listOrdersAction,
}

var settleOrderCmd = cli.Command{
	Name:      "settle",
	Usage:     "settle an order against one or more counter fills",
	ArgsUsage: "<order_id>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "fill",
			Usage:    "a counter fill as <order_id>:<amount_owner_receives>:<amount_counter_receives>, repeatable",
			Required: true,
		},
	},
	Action: settleOrderAction,
}

var cancelOrderCmd = cli.Command{
	Name:      "cancelorder",
	Usage:     "cancel an order and release its remaining escrow",
	ArgsUsage: "<order_id>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "owner", Usage: "the account owning the order", Required: true},
	},
	Action: cancelOrderAction,
}

func createOrderAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"owner":           ctx.String("owner"),
		"asset_from":      ctx.String("asset_from"),
		"asset_to":        ctx.String("asset_to"),
		"amount_from":     ctx.Uint64("amount_from"),
		"amount_to":       ctx.Uint64("amount_to"),
		"kind":            ctx.String("kind"),
		"slippage_bps":    ctx.Uint("slippage_bps"),
		"is_market_maker": ctx.Bool("market_maker"),
	}
	resp, err := doRequest("POST", url+"/v1/orders", body)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func getOrderAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}
	orderID := ctx.Args().First()

	resp, err := doRequest("GET", url+"/v1/orders/"+orderID, nil)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func listOrdersAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}

	resp, err := doRequest(
		"GET", url+"/v1/orders?owner="+ctx.String("owner"), nil,
	)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func settleOrderAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}
	orderID := ctx.Args().First()

	fills := make([]map[string]interface{}, 0)
	for _, raw := range ctx.StringSlice("fill") {
		fill, err := parseFill(raw)
		if err != nil {
			return err
		}
		fills = append(fills, fill)
	}

	resp, err := doRequest(
		"POST", url+"/v1/orders/"+orderID+"/settle",
		map[string]interface{}{"fills": fills},
	)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func cancelOrderAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}
	orderID := ctx.Args().First()

	resp, err := doRequest(
		"POST", url+"/v1/orders/"+orderID+"/cancel",
		map[string]interface{}{"requester": ctx.String("owner")},
	)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}
