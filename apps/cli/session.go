package main

import (
	"context"
	"fmt"

	"github.com/potencialize/dashboard/core/auth"
)

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	sess, err := cli.session.Login(ctx, auth.LoginBody{Email: email, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s.\n", sess.Role)
	return nil
}

// logout never fails: local credentials are dropped even if the server is unreachable.
func (cli *commandLine) logout(ctx context.Context) error {
	cli.session.Logout(ctx)
	fmt.Fprintln(cli.out, "Logged out.")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	sess, err := cli.authenticate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "role: %s\nteacher_id: %s\n", sess.Role, formatID(sess.TeacherID))
	return nil
}
