// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mitchellh/cli"

	"github.com/cloudsec/policydrift/command"
	"github.com/cloudsec/policydrift/source/live"
	"github.com/cloudsec/policydrift/version"
)

func main() {

	versionString := fmt.Sprintf("policydrift %s", version.GetHumanVersion())
	c := cli.NewCLI("policydrift", versionString)
	c.Args = os.Args[1:]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c.Commands = map[string]cli.CommandFactory{
		"compare": func() (cli.Command, error) {
			return &command.CompareCommand{Ctx: ctx, Live: live.SourceFromEnv()}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{Version: versionString}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %v\n", err)
	}
	os.Exit(exitCode)
}
