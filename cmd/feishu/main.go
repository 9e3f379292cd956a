// Command feishu 命令行工具：获取 token、查询用户与群组、发送消息，以及运行 HTTP 转发服务
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/funkfeishu/feishu/core"
	"github.com/funkfeishu/feishu/feishu"
)

const usage = `usage: feishu <command> [flags]

commands:
  token   print a tenant access token
  user    resolve an email or mobile number to a user id
  group   search chats the bot belongs to
  send    send a message
  serve   run the HTTP relay

run "feishu <command> --help" for command flags`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errUsage
	}

	name, args := args[0], args[1:]
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	addConfigFlags(fs)

	switch name {
	case "token":
		return runToken(ctx, fs, args, stdout)
	case "user":
		return runUser(ctx, fs, args, stdout)
	case "group":
		return runGroup(ctx, fs, args, stdout)
	case "send":
		return runSend(ctx, fs, args, stdout)
	case "serve":
		return runServe(ctx, fs, args)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", name, usage)
		return errUsage
	}
}

// app 单次命令运行所需的依赖
type app struct {
	cfg    *Config
	client *feishu.Client
	logger *slog.Logger
	close  func()
}

func newApp(fs *pflag.FlagSet, metrics *core.Metrics) (*app, error) {
	cfg, err := loadConfig(fs)
	if err != nil {
		return nil, err
	}

	zl, logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	closers := []func(){func() { _ = zl.Sync() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	cache, closeCache, err := newCache(cfg, logger)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, closeCache)

	var opts []core.Option
	if cfg.Timeout > 0 {
		opts = append(opts, core.WithTimeout(cfg.Timeout))
	}

	client, err := feishu.New(feishu.Config{
		AppID:             cfg.AppID,
		AppSecret:         cfg.AppSecret,
		BaseURL:           cfg.BaseURL,
		Cache:             cache,
		Logger:            logger,
		Metrics:           metrics,
		Options:           opts,
		TokenExpireBuffer: cfg.TokenExpireBuffer,
		SingleFlightToken: cfg.SingleFlight,
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	return &app{cfg: cfg, client: client, logger: logger, close: closeAll}, nil
}

func newCache(cfg *Config, logger *slog.Logger) (core.Cache, func(), error) {
	if cfg.RedisURL == "" {
		return core.NewMemoryCache(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	cache, err := core.NewRedisCache(core.RedisCacheConfig{
		Client: rdb,
		Prefix: cfg.RedisPrefix,
		Logger: logger,
	})
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return cache, func() { _ = rdb.Close() }, nil
}

func runToken(ctx context.Context, fs *pflag.FlagSet, args []string, stdout io.Writer) error {
	refresh := fs.Bool("refresh", false, "skip the cache and fetch a new token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(fs, nil)
	if err != nil {
		return err
	}
	defer a.close()

	var token string
	if *refresh {
		token, err = a.client.RefreshToken(ctx)
	} else {
		token, err = a.client.GetToken(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func runUser(ctx context.Context, fs *pflag.FlagSet, args []string, stdout io.Writer) error {
	idType := fs.String("user-id-type", string(feishu.UserIDTypeUnionID), "union_id, open_id or user_id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: feishu user [flags] <email|mobile>", errUsage)
	}

	a, err := newApp(fs, nil)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.client.GetID(ctx, fs.Arg(0), feishu.UserIDType(*idType))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, id)
	return nil
}

func runGroup(ctx context.Context, fs *pflag.FlagSet, args []string, stdout io.Writer) error {
	idType := fs.String("user-id-type", string(feishu.UserIDTypeOpenID), "owner id type in results")
	all := fs.Bool("all", false, "print the whole result page as json instead of the first chat id")
	pageSize := fs.Int("page-size", 0, "page size when --all is set")
	pageToken := fs.String("page-token", "", "page token when --all is set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: feishu group [flags] <query>", errUsage)
	}

	a, err := newApp(fs, nil)
	if err != nil {
		return err
	}
	defer a.close()

	if !*all {
		chatID, err := a.client.Search(ctx, fs.Arg(0), feishu.UserIDType(*idType))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, chatID)
		return nil
	}

	result, err := a.client.SearchChats(ctx, feishu.ChatSearchRequest{
		Query:      fs.Arg(0),
		UserIDType: feishu.UserIDType(*idType),
		PageSize:   *pageSize,
		PageToken:  *pageToken,
	})
	if err != nil {
		return err
	}
	return writeIndented(stdout, result)
}

func runSend(ctx context.Context, fs *pflag.FlagSet, args []string, stdout io.Writer) error {
	to := fs.String("to", "", "chat id, email or mobile number")
	msgType := fs.String("msg-type", string(feishu.MessageTypeText), "message type")
	content := fs.String("content", "", `message content, e.g. {"text":"hello"}`)
	receiveIDType := fs.String("receive-id-type", string(feishu.ReceiveIDTypeOpenID), "chat_id or open_id")
	userIDType := fs.String("user-id-type", string(feishu.UserIDTypeOpenID), "id type used to resolve --to when sending by open_id")
	dedupKey := fs.String("uuid", "", "de-duplication key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" || *content == "" {
		return fmt.Errorf("%w: --to and --content are required", errUsage)
	}

	a, err := newApp(fs, nil)
	if err != nil {
		return err
	}
	defer a.close()

	msg, err := a.client.Send(ctx, *to, feishu.MessageType(*msgType), *content,
		feishu.WithReceiveIDType(feishu.ReceiveIDType(*receiveIDType)),
		feishu.WithUserIDType(feishu.UserIDType(*userIDType)),
		feishu.WithUUID(*dedupKey),
	)
	if err != nil {
		return err
	}
	return writeIndented(stdout, msg)
}

func runServe(ctx context.Context, fs *pflag.FlagSet, args []string) error {
	fs.String("addr", "", "listen address (FEISHU_ADDR)")
	fs.String("encrypt-key", "", "event encrypt key (FEISHU_ENCRYPT_KEY)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	registerRuntimeCollectors(reg)
	metrics, err := core.NewMetrics(reg)
	if err != nil {
		return err
	}

	a, err := newApp(fs, metrics)
	if err != nil {
		return err
	}
	defer a.close()

	return serve(ctx, a, reg)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
