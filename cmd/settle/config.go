package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var configCmd = cli.Command{
	Name:  "config",
	Usage: "manage the CLI state",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "store the daemon addresses the CLI talks to",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "trader_addr",
					Usage: "the host:port of the trader interface",
					Value: "localhost:9945",
				},
				&cli.StringFlag{
					Name:  "operator_addr",
					Usage: "the host:port of the operator interface",
					Value: "localhost:9000",
				},
			},
			Action: configInitAction,
		},
	},
	Action: configAction,
}

func configAction(*cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}
	for key, value := range state {
		fmt.Printf("%s: %s\n", key, value)
	}
	return nil
}

func configInitAction(ctx *cli.Context) error {
	return setState(map[string]string{
		"trader_addr":   ctx.String("trader_addr"),
		"operator_addr": ctx.String("operator_addr"),
	})
}
