package main

import (
	"github.com/trezcool/chekechea/storage/postgres"
)

var gooseRunFunc = postgres.Goose // mockable

func (cli *commandLine) migrate(args []string) error {
	var arguments []string
	if len(args) > 1 {
		arguments = args[1:]
	}
	return gooseRunFunc(cli.db, args[0], arguments...)
}
