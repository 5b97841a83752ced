// Command dashboard is a terminal client of the Potencialize dashboard API.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/services/apiclient"
	logsvc "github.com/potencialize/dashboard/services/logger"
	"github.com/potencialize/dashboard/storage"
)

func main() {
	os.Exit(start(os.Args))
}

func start(args []string) int {
	c := newContainer(core.NewConfig)

	code := 0
	err := c.Invoke(func(conf *core.Config, logger core.Logger, store storage.Store, cli *commandLine) {
		defer logsvc.Flush(logger)
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("closing secret store", err)
			}
		}()
		logger.Debug(fmt.Sprintf("%s %s (%s, %s mode)", conf.AppName, conf.Build, conf.Env, conf.API.AuthMode))

		if err := cli.run(args); err != nil {
			code = 1
			if errors.Is(err, errHelp) {
				return
			}
			logger.Debug("command failed", err)
			fmt.Fprintf(os.Stderr, "error: %s\n", apiclient.Normalize(err).Message)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", dig.RootCause(err))
		return 1
	}
	return code
}
