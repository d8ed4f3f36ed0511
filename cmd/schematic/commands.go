package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/bom"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/diagnostics"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/producer"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/session"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/trace"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/natsutil"
)

func newDiagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diag <file>",
		Short: "Run electrical diagnostics on a circuit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			findings := diagnostics.Run(g)
			if len(findings) == 0 {
				subtle.Fprintln(out, "empty circuit")
				return nil
			}
			for _, f := range findings {
				printFinding(out, f)
			}
			if diagnostics.Worst(findings) == diagnostics.StatusError {
				return fmt.Errorf("%s: circuit has errors", args[0])
			}
			return nil
		},
	}
}

func printFinding(w io.Writer, f diagnostics.Finding) {
	c := good
	switch f.Status {
	case diagnostics.StatusError:
		c = bad
	case diagnostics.StatusWarning:
		c = warn
	}
	fmt.Fprintf(w, "%s %s  %s\n", c.Sprintf("%-7s", f.Status), f.Code, f.Message)
}

func newBOMCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "bom <file>",
		Short: "Export the bill of materials as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return bom.WriteCSV(cmd.OutOrStdout(), g)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := bom.WriteCSV(f, g); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			good.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(g.Components), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to this file instead of stdout")
	return cmd
}

func newTraceCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "trace <file> <component-id>",
		Short: "List components electrically connected to a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if to != "" {
				path := trace.Path(g, args[1], to)
				if path == nil {
					return fmt.Errorf("no path from %s to %s", args[1], to)
				}
				for i, id := range path {
					if i > 0 {
						subtle.Fprint(out, " -> ")
					}
					fmt.Fprint(out, id)
				}
				fmt.Fprintln(out)
				return nil
			}
			reach := trace.Reachable(g, args[1])
			for _, id := range reach.Sorted() {
				label := ""
				if c, ok := g.Component(id); ok {
					label = c.Label
				}
				fmt.Fprintf(out, "%s\t%s\n", id, subtle.Sprint(label))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "print the shortest path to this component instead")
	return cmd
}

func newGenerateCmd(opts *rootOpts) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a circuit with the configured producer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd.ErrOrStderr())
			p, err := producer.Build(cfg.Producer, logger)
			if err != nil {
				return err
			}
			guarded := producer.Guard(p, producer.GuardOptsFrom(cfg.Generate), logger)

			start := time.Now()
			g, err := guarded.Generate(cmd.Context(), args[0])
			if err != nil {
				bad.Fprintln(cmd.ErrOrStderr(), session.FailureNotice)
				return err
			}
			g = schematic.ApplyDefaultLayout(g)
			logger.Info("generated", "components", len(g.Components), "elapsed", time.Since(start))

			if output == "" {
				return schematic.Encode(cmd.OutOrStdout(), g)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := schematic.Encode(f, g); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write graph JSON to this file instead of stdout")
	return cmd
}

func newWatchCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [session-id]",
		Short: "Print change events published by the API server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return fmt.Errorf("NATS_URL is not set")
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			nc, err := nats.Connect(cfg.NATS.URL, nats.Name("schematic-watch"))
			if err != nil {
				return fmt.Errorf("nats connect: %w", err)
			}
			defer nc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, nc, natsutil.WatchSubject(cfg.NATS.SubjectPrefix, id), cmd.OutOrStdout())
		},
	}
}

// watch prints events until ctx is done.
func watch(ctx context.Context, nc *nats.Conn, subject string, w io.Writer) error {
	events := make(chan session.Event, 64)
	sub, err := natsutil.Subscribe(nc, subject, func(_ context.Context, ev session.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		return err
	}
	subtle.Fprintf(w, "watching %s\n", subject)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			printEvent(w, ev)
		}
	}
}

func printEvent(w io.Writer, ev session.Event) {
	c := good
	switch ev.Kind {
	case session.KindNotice:
		c = bad
	case session.KindClosed:
		c = subtle
	}
	fmt.Fprintf(w, "%s v%d %s components=%d connections=%d",
		ev.Session, ev.Version, c.Sprint(ev.Kind), len(ev.Components), len(ev.Connections))
	if ev.Selected != "" {
		fmt.Fprintf(w, " selected=%s", ev.Selected)
	}
	if ev.Notice != "" {
		fmt.Fprintf(w, " notice=%q", ev.Notice)
	}
	fmt.Fprintln(w)
}
