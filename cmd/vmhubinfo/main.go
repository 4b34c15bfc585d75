// Command vmhubinfo logs into a hub and prints every known property and the session counters.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretaja/vmhub"
	"github.com/davecgh/go-spew/spew"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

type config struct {
	Host     string        `envconfig:"HOST" default:"192.168.0.1"`
	Username string        `envconfig:"USERNAME"`
	Password string        `envconfig:"PASSWORD" required:"true"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"10s"`
	Debug    bool          `envconfig:"DEBUG"`
}

func main() {
	var cfg config
	if err := envconfig.Process("vmhub", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	code := execute(cfg, logger)
	_ = logger.Sync()
	os.Exit(code)
}

// Runs hub session and returns process exit code
func execute(cfg config, logger *zap.Logger) int {
	p := &vmhub.Hparams{
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
		UseCache: true,
		Logger:   logger,
	}

	if err := vmhub.Session(p, run); err != nil {
		logger.Error("hub session failed", zap.Error(err))
		return 1
	}

	return 0
}

func run(h *vmhub.Hub) error {
	fmt.Println("Got", h)

	ct, err := h.ConnectionType()
	if err != nil {
		return err
	}
	fmt.Println("Connection type:", ct)

	fmt.Println("Properties:")
	for _, p := range vmhub.Properties() {
		v, err := h.Property(p.Name)
		if err != nil {
			fmt.Printf("- %s: error: %v\n", p.Name, err)
			continue
		}
		if p.Kind == vmhub.KindWalk {
			fmt.Printf("- %s:\n%s", p.Name, spew.Sdump(v))
			continue
		}
		fmt.Printf("- %s: %q\n", p.Name, fmt.Sprint(v))
	}

	devs, err := h.LanDevices()
	if err != nil {
		return err
	}
	fmt.Println("LAN devices:")
	for d := range devs {
		fmt.Printf("- %s %s %s online=%t\n", d.IPv4, d.MAC, d.HostName, d.Online)
	}

	rules, err := h.PortForwards()
	if err != nil {
		return err
	}
	fmt.Println("Port forwards:")
	for f := range rules {
		fmt.Printf("- %s %d-%d -> %s:%d-%d enabled=%t\n", f.Protocol,
			f.ExtStartPort.Value, f.ExtEndPort.Value, f.LocalIPv4,
			f.LocalStartPort.Value, f.LocalEndPort.Value, f.Enabled)
	}

	status, err := h.RouterStatus()
	if err != nil {
		return err
	}
	fmt.Printf("Router status:\n%s", spew.Sdump(status))

	fmt.Println("Session counters:")
	c := h.Counters()
	for _, name := range c.Names() {
		fmt.Println("-", name, c.Get(name))
	}

	return nil
}
