package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/blockmesh/config"
	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/logging"
	"github.com/hupe1980/blockmesh/model"
	"github.com/hupe1980/blockmesh/model/anthropic"
	"github.com/hupe1980/blockmesh/model/deepseek"
	"github.com/hupe1980/blockmesh/stream"
	translator "github.com/hupe1980/blockmesh/translator/deepseek"
)

func (a *app) chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Stream a live completion from the configured provider and print its blocks",
		ArgsUsage: "<prompt>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "system",
				Usage: "system instructions",
			},
			&cli.BoolFlag{
				Name:  "steps",
				Usage: "print the block view after every chunk",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prompt := strings.Join(cmd.Args().Slice(), " ")
			if prompt == "" {
				return fmt.Errorf("chat: missing prompt")
			}
			m, err := newModel(a.cfg, a.log)
			if err != nil {
				return err
			}
			req := model.Request{
				Instructions: cmd.String("system"),
				Turns:        []model.Turn{{Role: "user", Text: prompt}},
			}
			return chat(ctx, m, req, cmd.Root().Writer, cmd.Bool("steps"), a.log)
		},
	}
}

// newModel builds the transport selected by cfg.Provider.
func newModel(cfg *config.Config, log logging.Logger) (model.Model, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case translator.Tag:
		return deepseek.NewModel(func(o *deepseek.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			o.APIKey = cfg.APIKey
			o.MaxTokens = cfg.MaxTokens
			o.Logger = log
		}), nil
	case anthropic.Tag:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.BaseURL = cfg.BaseURL
			o.APIKey = cfg.APIKey
			o.MaxTokens = cfg.MaxTokens
			o.Logger = log
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// chat streams req through m. One goroutine accumulates chunks and publishes
// the block view after each one; the other prints views when steps is set.
// The final view is printed once both finish.
func chat(ctx context.Context, m model.Model, req model.Request, w io.Writer, steps bool, log logging.Logger) error {
	acc := stream.New(stream.WithLogger(log))
	chunks, errs := m.Stream(ctx, req)
	views := make(chan []core.Block)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(views)
		_, err := acc.Consume(gctx, chunks, errs, func(blocks []core.Block) error {
			select {
			case views <- blocks:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		enc := json.NewEncoder(w)
		step := 0
		for blocks := range views {
			step++
			if !steps {
				continue
			}
			if err := enc.Encode(newView(step, m.Info().Provider, blocks)); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("chat finished", "model", m.Info().Name, "chunks", acc.Len())
	return printFinal(w, acc)
}
