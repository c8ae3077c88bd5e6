package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/prodcatalog/config"
	"github.com/talkincode/prodcatalog/internal/adminapi"
	"github.com/talkincode/prodcatalog/internal/app"
	"github.com/talkincode/prodcatalog/internal/domain"
	"github.com/talkincode/prodcatalog/internal/webserver"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "catalogd:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML config file; environment variables override it",
		EnvVars: []string{"CATALOG_CONFIG"},
	}
	envFlag := &cli.StringFlag{
		Name:  "env-file",
		Usage: "dotenv file loaded before the configuration",
		Value: ".env",
	}

	return &cli.App{
		Name:    "catalogd",
		Usage:   "product catalog with LLM-backed extraction",
		Version: version,
		Flags:   []cli.Flag{configFlag, envFlag},
		Action:  serve,
		Commands: []*cli.Command{{
			Name:   "serve",
			Usage:  "run the HTTP API (default)",
			Action: serve,
		}, {
			Name:  "extract",
			Usage: "extract one product and print it as JSON without starting the server",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "url", Usage: "product page URL"},
				&cli.StringFlag{Name: "text", Usage: "free-text product description, - reads stdin"},
				&cli.StringFlag{Name: "pdf", Usage: "path to a PDF document"},
			},
			Action: extractOnce,
		}, {
			Name:  "version",
			Usage: "print the version",
			Action: func(c *cli.Context) error {
				fmt.Fprintln(c.App.Writer, version)
				return nil
			},
		}},
	}
}

// loadConfig reads the dotenv file, if any, then the YAML config and the
// environment.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	if f := c.String("env-file"); f != "" {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(c *cli.Context) (*app.Application, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return nil, err
	}
	return application, nil
}

func serve(c *cli.Context) error {
	application, err := setup(c)
	if err != nil {
		return err
	}
	defer application.Release()

	adminapi.Init()
	server := webserver.NewAdminServer(application.Config(), adminapi.AppContextMiddleware(application))

	g, ctx := errgroup.WithContext(c.Context)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		zap.L().Info("shutting down catalog api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func extractOnce(c *cli.Context) error {
	var given []string
	for _, name := range []string{"url", "text", "pdf"} {
		if c.String(name) != "" {
			given = append(given, name)
		}
	}
	if len(given) != 1 {
		return cli.Exit("exactly one of --url, --text or --pdf is required", 2)
	}

	application, err := setup(c)
	if err != nil {
		return err
	}
	defer application.Release()

	var product domain.Product
	extractor := application.Extractor()
	switch given[0] {
	case "url":
		product, err = extractor.FromURL(c.Context, c.String("url"))
	case "text":
		text := c.String("text")
		if text == "-" {
			data, rerr := io.ReadAll(os.Stdin)
			if rerr != nil {
				return rerr
			}
			text = strings.TrimSpace(string(data))
		}
		product, err = extractor.FromText(c.Context, text)
	case "pdf":
		f, oerr := os.Open(c.String("pdf"))
		if oerr != nil {
			return oerr
		}
		defer f.Close()
		product, err = extractor.FromPDF(c.Context, f)
	}
	if err != nil {
		return err
	}

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(product, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
