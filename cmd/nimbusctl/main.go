package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nimbuscloud/nimbus-go/internal/config"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus/audience"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus/devices"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus/push"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if path := os.Getenv("NIMBUS_CONFIG"); path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config file: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := initLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := nimbus.NewClient(nimbus.Config{
		Key:     cfg.Key,
		Secret:  cfg.Secret,
		Token:   cfg.Token,
		Server:  cfg.Server,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("Failed to create client", zap.Error(err))
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "send":
		err = runSend(ctx, client, os.Args[2:])
	case "schedule":
		err = runSchedule(ctx, client, os.Args[2:])
	case "channels":
		err = runChannels(ctx, client)
	case "uninstall":
		err = runUninstall(ctx, client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", zap.Error(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: nimbusctl <send|schedule|channels|uninstall> [flags]")
}

func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = lvl
	return logCfg.Build()
}

// selectorFromFlags builds the audience from the shared targeting flags.
func selectorFromFlags(all bool, tag, channel, namedUser string) (*audience.Selector, error) {
	switch {
	case all:
		return audience.All(), nil
	case tag != "":
		return audience.Tag(tag), nil
	case channel != "":
		return audience.Channel(channel), nil
	case namedUser != "":
		return audience.NamedUser(namedUser), nil
	}
	return nil, fmt.Errorf("one of -all, -tag, -channel or -named-user is required")
}

func buildPush(alert string, sel *audience.Selector, deviceTypes string) *push.Push {
	p := &push.Push{
		Audience:     sel,
		Notification: push.Notification(alert),
	}
	if deviceTypes == "" || deviceTypes == "all" {
		p.AllDeviceTypes = true
		return p
	}
	for _, dt := range strings.Split(deviceTypes, ",") {
		p.DeviceTypes = append(p.DeviceTypes, push.DeviceType(strings.TrimSpace(dt)))
	}
	return p
}

func runSend(ctx context.Context, client *nimbus.Client, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	alert := fs.String("alert", "", "notification alert text")
	tag := fs.String("tag", "", "target devices carrying this tag")
	channel := fs.String("channel", "", "target a single channel")
	namedUser := fs.String("named-user", "", "target a named user")
	all := fs.Bool("all", false, "target every device")
	deviceTypes := fs.String("device-types", "all", "comma-separated platforms, or \"all\"")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sel, err := selectorFromFlags(*all, *tag, *channel, *namedUser)
	if err != nil {
		return err
	}

	res, err := buildPush(*alert, sel, *deviceTypes).Send(ctx, client)
	if err != nil {
		return err
	}
	return printBody(res)
}

func runSchedule(ctx context.Context, client *nimbus.Client, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	alert := fs.String("alert", "", "notification alert text")
	tag := fs.String("tag", "", "target devices carrying this tag")
	channel := fs.String("channel", "", "target a single channel")
	namedUser := fs.String("named-user", "", "target a named user")
	all := fs.Bool("all", false, "target every device")
	deviceTypes := fs.String("device-types", "all", "comma-separated platforms, or \"all\"")
	at := fs.String("at", "", "delivery time, e.g. 2026-09-01T12:00:00Z")
	name := fs.String("name", "", "schedule name")
	local := fs.Bool("local", false, "deliver at each recipient's local time")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sel, err := selectorFromFlags(*all, *tag, *channel, *namedUser)
	if err != nil {
		return err
	}

	sched, err := push.NewAt(*at, buildPush(*alert, sel, *deviceTypes))
	if err != nil {
		return err
	}
	sched.Name = *name
	sched.Local = *local

	res, err := sched.Create(ctx, client)
	if err != nil {
		return err
	}
	return printBody(res)
}

func runChannels(ctx context.Context, client *nimbus.Client) error {
	it := devices.ListChannels(client)
	for it.Next(ctx) {
		ch := it.Item()
		fmt.Printf("%s\t%s\topt_in=%t\n", ch.ChannelID, ch.DeviceType, ch.OptIn)
	}
	if err := it.Err(); err != nil {
		return err
	}
	fmt.Printf("%d channels\n", it.Count())
	return nil
}

func runUninstall(ctx context.Context, client *nimbus.Client, args []string) error {
	fs := flag.NewFlagSet("uninstall", flag.ExitOnError)
	deviceType := fs.String("device-type", "", "device type of the listed channels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("at least one channel id is required")
	}

	refs := make([]devices.ChannelRef, 0, fs.NArg())
	for _, id := range fs.Args() {
		refs = append(refs, devices.ChannelRef{ChannelID: id, DeviceType: *deviceType})
	}

	res, err := devices.UninstallChannels(ctx, client, refs)
	if err != nil {
		return err
	}
	return printBody(res)
}

func printBody(res *nimbus.Response) error {
	out, err := json.MarshalIndent(res.Body, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
