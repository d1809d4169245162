/*
 * Copyright 2022 The Go Authors<36625090@qq.com>. All rights reserved.
 * Use of this source code is governed by a MIT-style
 * license that can be found in the LICENSE file.
 */

package option

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Http struct {
	Path         string `long:"http.path" default:"" description:"Path for the HTTP server context" `
	Address      string `long:"http.address" default:"0.0.0.0" description:"Address for the HTTP server listening" `
	Port         int    `long:"http.port" default:"3978" description:"Port for the HTTP server listening" `
	Cors         bool   `long:"http.cors" description:"Support CORS access" `
	Access       bool   `long:"http.access" description:"Log one access line per HTTP request" `
	RequestLog   bool   `long:"http.requestlog" description:"Log HTTP requests" `
	IdleTimeout  int    `long:"http.idle" default:"0" description:"Timeout (in seconds) for idle connection" `
	ReadTimeout  int    `long:"http.read" default:"0" description:"Timeout (in seconds) for reading client request" `
	WriteTimeout int    `long:"http.write" default:"0" description:"Timeout (in seconds) for writing to client request" `
}

// Options 服务参数选项
type Options struct {
	ConfigFile string `long:"config" description:"TOML config file with the [logger] section"`
	EnvFile    string `long:"env-file" default:".env" description:"Dotenv file loaded before reading the environment"`
	Http       Http   `group:"http"`
	Version    bool   `long:"version" short:"v" description:"Show the program version"`

	parser *flags.Parser
}

func NewOptions() *Options {
	opts := &Options{}
	opts.parser = flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	return opts
}

// Parse reads os.Args. Help is printed to stdout and reported as
// ErrHelp so the caller can exit cleanly.
func (m *Options) Parse() error {
	return m.ParseArgs(os.Args[1:])
}

func (m *Options) ParseArgs(args []string) error {
	_, err := m.parser.ParseArgs(args)
	if err == nil {
		return nil
	}
	if flagError, ok := err.(*flags.Error); ok && flagError.Type == flags.ErrHelp {
		m.parser.WriteHelp(os.Stdout)
	}
	return err
}

// IsHelp reports whether err came from a --help request.
func IsHelp(err error) bool {
	flagError, ok := err.(*flags.Error)
	return ok && flagError.Type == flags.ErrHelp
}
