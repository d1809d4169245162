package logs

import (
	"os"

	"github.com/stardustagi/TopRelay/utils"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *zap.Logger

type LoggerConfig struct {
	Filename   string `json:"filename" toml:"filename"`
	MaxSize    int    `json:"maxsize" toml:"maxsize"`
	MaxAge     int    `json:"maxage" toml:"maxage"`
	MaxBackups int    `json:"maxbackups" toml:"maxbackups"`
	LocalTime  bool   `json:"localtime" toml:"localtime"`
	Compress   bool   `json:"compress" toml:"compress"`
	Level      int    `json:"level" toml:"level"`
}

// DefaultConfig is used when no [logger] section is configured.
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Filename:   "logs/relay.log",
		MaxSize:    60,
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
		Level:      int(zapcore.InfoLevel),
	}
}

// Init builds the global logger from a JSON encoded LoggerConfig.
func Init(logConfigJson []byte) error {
	logConfig, err := utils.Bytes2Struct[LoggerConfig](logConfigJson)
	if err != nil {
		return err
	}
	InitWithConfig(logConfig)
	return nil
}

// InitWithConfig builds the global logger. An empty Filename logs to stdout only.
func InitWithConfig(logConfig LoggerConfig) {
	// 日志级别
	level := zapcore.Level(logConfig.Level)
	if level < zapcore.DebugLevel || level > zapcore.FatalLevel {
		level = zapcore.InfoLevel
	}

	// 编码器配置
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var zapCore []zapcore.Core
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	// 控制台输出
	zapCore = append(zapCore, zapcore.NewCore(
		encoder,
		zapcore.Lock(os.Stdout),
		level,
	))
	// 文件输出配置
	if logConfig.Filename != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logConfig.Filename,
			MaxSize:    logConfig.MaxSize,    // megabytes
			MaxBackups: logConfig.MaxBackups, // 日志文件保留的最大个数
			MaxAge:     logConfig.MaxAge,     // days
			LocalTime:  logConfig.LocalTime,
			Compress:   logConfig.Compress,
		})
		zapCore = append(zapCore, zapcore.NewCore(
			encoder,
			fileWriter,
			level,
		))
	}

	Log = zap.New(zapcore.NewTee(zapCore...), zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

func Infof(format string, args ...interface{}) {
	if Log != nil {
		Log.Sugar().Infof(format, args...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Error(msg, fields...)
	}
}

func Errorf(format string, args ...interface{}) {
	if Log != nil {
		Log.Sugar().Errorf(format, args...)
	}
}

func Debug(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Debug(msg, fields...)
	}
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func GetLogger(m string) *zap.Logger {
	if Log == nil {
		// 默认配置, 仅输出到控制台
		cfg := DefaultConfig()
		cfg.Filename = ""
		InitWithConfig(cfg)
	}
	return Log.With(zap.String("module", m))
}
