package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/cmd/helm-deploy/command"
	"github.com/shini4i/helm-deploy/cmd/helm-deploy/utils"
	"github.com/shini4i/helm-deploy/internal/app"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/spf13/afero"
)

var (
	log     = logging.MustGetLogger("helm-deploy")
	version = "local"
	format  = logging.MustStringFormatter(`%{message}`)
	red     = color.New(color.FgRed, color.Bold).SprintFunc()
)

func loggingInit(level logging.Level) {
	backend := logging.NewLogBackend(os.Stdout, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)
	backendLeveled.SetLevel(level, "")
	logging.SetBackend(backendLeveled)
}

func initLogging(debug bool) {
	if debug {
		loggingInit(logging.DEBUG)
		return
	}
	loggingInit(logging.INFO)
}

func runApp(ctx context.Context, cfg app.Config) error {
	deployer, err := app.New(cfg, app.Dependencies{
		FS:        afero.NewOsFs(),
		CmdRunner: &utils.RealCmdRunner{},
		Logger:    log,
	})
	if err != nil {
		return err
	}

	return deployer.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := command.Execute(ctx, command.Options{
		Version:     version,
		TempDirBase: os.TempDir(),
		RunApp:      runApp,
		InitLogging: initLogging,
	}, nil)
	stop()

	if err != nil {
		log.Errorf("%s %s", red("✘"), err)
		os.Exit(models.ExitCode(err))
	}
}
