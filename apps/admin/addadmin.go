package main

import (
	"context"
	"fmt"

	"github.com/trezcool/chekechea/core/user"
)

func (cli *commandLine) addAdmin(name, email, pwd string) error {
	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := nu.Validate(cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.CreateAdmin(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("admin %q (%s) created\n", usr.Name, usr.Email)
	return nil
}
