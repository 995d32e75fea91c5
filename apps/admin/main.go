package main

import (
	"log"
	"os"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/user"
	"github.com/trezcool/chekechea/storage/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := postgres.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())
	store := postgres.NewStore(db)

	// start CLI
	cli := commandLine{
		db: db,
		usrSvc: user.NewService(
			postgres.NewUserRepository(store),
			postgres.NewSessionRepository(store),
			conf,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
