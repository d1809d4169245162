package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/stardustagi/TopRelay/libs/conf"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/libs/option"
	"github.com/stardustagi/TopRelay/libs/server"
	"github.com/stardustagi/TopRelay/services"
	"github.com/stardustagi/TopRelay/settings"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := option.NewOptions()
	if err := opts.Parse(); err != nil {
		if option.IsHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.Version {
		fmt.Println("relay", services.Version)
		return 0
	}

	// real environment variables win over the dotenv file
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", opts.EnvFile, err)
			return 1
		}
	}

	if err := conf.Init(opts.ConfigFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if raw := conf.Get("logger"); raw != nil {
		if err := logs.Init(raw); err != nil {
			fmt.Fprintf(os.Stderr, "logger config: %v\n", err)
			return 1
		}
	} else {
		logs.InitWithConfig(logs.DefaultConfig())
	}
	defer logs.Sync()

	cfg, err := settings.Load()
	if err != nil {
		logs.Error("configuration error", logs.ErrorInfo(err))
		return 1
	}

	svc := services.NewRelayService(&opts.Http, cfg)
	if err := svc.Init(); err != nil {
		logs.Error("relay init failed", logs.ErrorInfo(err))
		return 1
	}
	if err := svc.Start(); err != nil {
		logs.Error("relay start failed", logs.ErrorInfo(err))
		return 1
	}

	srv := server.NewServer()
	go func() {
		<-svc.Done()
		srv.Shutdown()
	}()
	srv.HandleSignal()
	svc.Stop()

	if err := svc.Err(); err != nil {
		logs.Error("relay stopped with error", logs.ErrorInfo(err))
		return 1
	}
	return 0
}
