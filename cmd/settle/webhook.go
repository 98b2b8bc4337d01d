package main

import (
	"github.com/urfave/cli/v2"
)

var addWebhookCmd = cli.Command{
	Name:  "addwebhook",
	Usage: "register a webhook notified about settlement events",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "topic", Usage: "trade_settled, order_cancelled or *", Required: true},
		&cli.StringFlag{Name: "endpoint", Usage: "the URL notified with a POST request", Required: true},
		&cli.StringFlag{Name: "secret", Usage: "the secret signing the notification JWT"},
	},
	Action: addWebhookAction,
}

var removeWebhookCmd = cli.Command{
	Name:  "removewebhook",
	Usage: "remove a registered webhook",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "topic", Required: true},
		&cli.StringFlag{Name: "id", Required: true},
	},
	Action: removeWebhookAction,
}

var listWebhooksCmd = cli.Command{
	Name:  "listwebhooks",
	Usage: "list the webhooks registered for a topic",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "topic", Required: true},
	},
	Action: listWebhooksAction,
}

func addWebhookAction(ctx *cli.Context) error {
	url, err := baseURL(true)
	if err != nil {
		return err
	}

	resp, err := doRequest("POST", url+"/v1/webhooks", map[string]interface{}{
		"topic":    ctx.String("topic"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	url, err := baseURL(true)
	if err != nil {
		return err
	}

	resp, err := doRequest(
		"DELETE",
		url+"/v1/webhooks?topic="+ctx.String("topic")+"&id="+ctx.String("id"),
		nil,
	)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	url, err := baseURL(true)
	if err != nil {
		return err
	}

	resp, err := doRequest(
		"GET", url+"/v1/webhooks?topic="+ctx.String("topic"), nil,
	)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}
