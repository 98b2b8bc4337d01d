package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var listPoolsCmd = cli.Command{
	Name:   "pools",
	Usage:  "list the sunrise rebate pools",
	Action: listPoolsAction,
}

var leftoverCmd = cli.Command{
	Name:   "leftover",
	Usage:  "show the leftover pool balance",
	Action: leftoverAction,
}

var listRewardsCmd = cli.Command{
	Name:      "rewards",
	Usage:     "list the accumulated rewards of an account",
	ArgsUsage: "<account>",
	Action:    listRewardsAction,
}

var claimRewardsCmd = cli.Command{
	Name:  "claimrewards",
	Usage: "claim the rewards accumulated by an account for an epoch",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "account", Usage: "the claiming account", Required: true},
		&cli.Uint64Flag{Name: "epoch", Usage: "the epoch to claim", Required: true},
	},
	Action: claimRewardsAction,
}

var updatePriceCmd = cli.Command{
	Name:  "updateprice",
	Usage: "manually override the oracle rate of an asset pair",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "base_asset", Required: true},
		&cli.StringFlag{Name: "quote_asset", Required: true},
		&cli.StringFlag{Name: "price", Usage: "how much one base unit is worth in quote units", Required: true},
	},
	Action: updatePriceAction,
}

func listPoolsAction(*cli.Context) error {
	url, err := baseURL(true)
	if err != nil {
		return err
	}

	resp, err := doRequest("GET", url+"/v1/sunrise/pools", nil)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func leftoverAction(*cli.Context) error {
	url, err := baseURL(true)
	if err != nil {
		return err
	}

	resp, err := doRequest("GET", url+"/v1/sunrise/leftover", nil)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func listRewardsAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}
	account := ctx.Args().First()
	if account == "" {
		return fmt.Errorf("missing account")
	}

	resp, err := doRequest("GET", url+"/v1/rewards/"+account, nil)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func claimRewardsAction(ctx *cli.Context) error {
	url, err := baseURL(false)
	if err != nil {
		return err
	}

	resp, err := doRequest("POST", url+"/v1/rewards/claim", map[string]interface{}{
		"account": ctx.String("account"),
		"epoch":   ctx.Uint64("epoch"),
	})
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func updatePriceAction(ctx *cli.Context) error {
	url, err := baseURL(true)
	if err != nil {
		return err
	}

	resp, err := doRequest("POST", url+"/v1/prices", map[string]interface{}{
		"base_asset":  ctx.String("base_asset"),
		"quote_asset": ctx.String("quote_asset"),
		"price":       ctx.String("price"),
	})
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}
