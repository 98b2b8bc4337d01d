package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

var (
	settleDataDir = btcutil.AppDataDir("settle-operator", false)
	statePath     = path.Join(settleDataDir, "state.json")

	httpClient = &http.Client{Timeout: 30 * time.Second}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "settle operator CLI"
	app.Usage = "Command line interface for settled daemon operators"
	app.Commands = append(
		app.Commands,
		&configCmd,
		&createOrderCmd,
		&getOrderCmd,
		&listOrdersCmd,
		&settleOrderCmd,
		&cancelOrderCmd,
		&listPoolsCmd,
		&leftoverCmd,
		&listRewardsCmd,
		&claimRewardsCmd,
		&updatePriceCmd,
		&addWebhookCmd,
		&removeWebhookCmd,
		&listWebhooksCmd,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[settle] %v\n", err)
	os.Exit(1)
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(settleDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(settleDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, _ := getState()
	if currentData == nil {
		currentData = map[string]string{}
	}
	for key, value := range data {
		currentData[key] = value
	}

	jsonString, err := json.Marshal(currentData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}
	return nil
}

func baseURL(operator bool) (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	key := "trader_addr"
	if operator {
		key = "operator_addr"
	}
	addr, ok := state[key]
	if !ok {
		return "", fmt.Errorf("missing %s: try 'config init'", key)
	}
	return "http://" + addr, nil
}

func doRequest(method, url string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("daemon returned %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}

func printResponse(body []byte) {
	if len(body) == 0 {
		fmt.Println("ok")
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
