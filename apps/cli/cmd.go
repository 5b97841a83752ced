package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/services/dashboard"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in: run `dashboard login -email EMAIL` first")
)

type commandLine struct {
	session *auth.SessionController
	svc     *dashboard.Service
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                      - open a session (the password is prompted next)")
	fmt.Fprintln(cli.out, "  logout                                  - close the session")
	fmt.Fprintln(cli.out, "  whoami                                  - show the current session")
	fmt.Fprintln(cli.out, "  classes                                 - list the visible classes")
	fmt.Fprintln(cli.out, "  students -class ID                      - list the students of a class")
	fmt.Fprintln(cli.out, "  results -student ID -assessment ID      - show a student's results in an assessment")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := cli.flagSet("login")
	loginEmail := loginCmd.String("email", "", "The account email. The password will be prompted next.")

	studentsCmd := cli.flagSet("students")
	studentsClass := studentsCmd.Int("class", 0, "The class id.")

	resultsCmd := cli.flagSet("results")
	resultsStudent := resultsCmd.Int("student", 0, "The student id.")
	resultsAssessment := resultsCmd.Int("assessment", 0, "The assessment id.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, string(pwd))
	case "logout":
		return cli.logout(ctx)
	case "whoami":
		return cli.whoami(ctx)
	case "classes":
		return cli.classes(ctx)
	case "students":
		if err := studentsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *studentsClass < 1 {
			studentsCmd.Usage()
			return errHelp
		}
		return cli.students(ctx, *studentsClass)
	case "results":
		if err := resultsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resultsStudent < 1 || *resultsAssessment < 1 {
			resultsCmd.Usage()
			return errHelp
		}
		return cli.results(ctx, *resultsStudent, *resultsAssessment)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// authenticate restores the stored session, if any.
func (cli *commandLine) authenticate(ctx context.Context) (auth.Session, error) {
	if cli.session.Boot(ctx) != auth.StateAuthenticated {
		return auth.Session{}, errNotLoggedIn
	}
	sess, ok := cli.session.Session()
	if !ok {
		return auth.Session{}, errNotLoggedIn
	}
	return sess, nil
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
}

func formatID(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}
