package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/logging"
	"github.com/hupe1980/blockmesh/message"
	"github.com/hupe1980/blockmesh/stream"
	_ "github.com/hupe1980/blockmesh/translator/deepseek"
)

const maxLineSize = 4 << 20

// view is the JSON shape printed for a block sequence.
type view struct {
	Step     int          `json:"step,omitempty"`
	Provider string       `json:"provider"`
	Blocks   []core.Block `json:"blocks"`
}

func newView(step int, provider string, blocks []core.Block) view {
	if blocks == nil {
		blocks = []core.Block{}
	}
	return view{Step: step, Provider: provider, Blocks: blocks}
}

func (a *app) replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Accumulate a recorded stream (one raw chunk per JSON line) and print its blocks",
		ArgsUsage: "<file.jsonl>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "steps",
				Usage: "print the block view after every chunk",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("replay: missing input file")
			}
			var r io.Reader = os.Stdin
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("replay: %w", err)
				}
				defer f.Close()
				r = f
			}
			return replay(ctx, r, cmd.Root().Writer, cmd.Bool("steps"), a.log)
		},
	}
}

// replay reads raw chunks line by line, feeding them through an accumulator.
// Blank lines are skipped; a malformed line aborts with its line number.
func replay(ctx context.Context, r io.Reader, w io.Writer, steps bool, log logging.Logger) error {
	acc := stream.New(stream.WithLogger(log))
	enc := json.NewEncoder(w)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var c message.Chunk
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return fmt.Errorf("replay: line %d: %w", line, err)
		}
		blocks := acc.Add(c)
		if steps {
			if err := enc.Encode(newView(acc.Len(), acc.Chunk().Provider(), blocks)); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	log.Info("replay finished", "lines", line, "chunks", acc.Len())
	return printFinal(w, acc)
}

func printFinal(w io.Writer, acc *stream.Accumulator) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newView(0, acc.Chunk().Provider(), acc.Blocks()))
}
