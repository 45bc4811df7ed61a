package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/internal/live"
	"github.com/huangsam/peerscore/schema"
	"golang.org/x/term"
)

const tuneHelp = `Commands:
  peer status=50 valuation=25 operational=25   change peer-group weights (unnamed groups keep their value)
  weight producer.theme.metric.key=10          change one metric weight
  show                                         apply pending edits and print the ranking
  help                                         print this help
  quit                                         leave the session`

// lockedWriter serializes writes from the prompt and the debounce timer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// RunTune reads weight edits from in and prints re-scored rankings to out.
// Phase 1 runs once; every edit only re-applies weights through a debounced session.
func RunTune(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, in io.Reader, out io.Writer) error {
	engine, pre, err := preparePrecompute(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	w := &lockedWriter{w: out}
	initial := live.Weights{Metric: cfg.ScoringConfigs.Clone(), Peer: cfg.PeerWeights}
	session := live.NewSession(engine, pre, initial, cfg.Debounce, func(u live.Update) {
		writeTuneUpdate(w, cfg, u.Generation, u.Weights.Peer, u.Results)
	})
	defer session.Close()

	interactive := isTerminal(in)
	if interactive {
		_, _ = fmt.Fprintf(w, "Loaded %d scorable companies. Type 'help' for commands.\n", len(pre.Results))
	}
	writeTuneUpdate(w, cfg, 0, initial.Peer, session.Score())

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			_, _ = fmt.Fprint(w, "> ")
		}
		if ctx.Err() != nil || !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, args, _ := strings.Cut(line, " ")
		switch strings.ToLower(cmd) {
		case "quit", "exit":
			session.Flush()
			return ctx.Err()
		case "help":
			_, _ = fmt.Fprintln(w, tuneHelp)
		case "show":
			if _, ok := session.Flush(); !ok {
				cur := session.Weights()
				writeTuneUpdate(w, cfg, 0, cur.Peer, session.Score())
			}
		case "peer":
			pw, err := parsePeerEdit(session.Weights().Peer, args)
			if err != nil {
				_, _ = fmt.Fprintf(w, "error: %v\n", err)
				continue
			}
			session.SetPeerWeights(pw)
		case "weight":
			status, theme, key, weight, err := parseWeightEdit(args)
			if err != nil {
				_, _ = fmt.Fprintf(w, "error: %v\n", err)
				continue
			}
			session.SetMetricWeight(status, theme, key, weight)
		default:
			_, _ = fmt.Fprintf(w, "unknown command '%s'. type 'help' for commands\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read tune input: %w", err)
	}

	session.Flush()
	return ctx.Err()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parsePeerEdit applies "status=50 valuation=25" style edits on top of current.
func parsePeerEdit(current schema.PeerGroupWeights, args string) (schema.PeerGroupWeights, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return current, fmt.Errorf("expected group=weight pairs")
	}
	next := current
	for _, f := range fields {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return current, fmt.Errorf("expected group=weight, got '%s'", f)
		}
		parsed, err := contract.ParsePeerWeights(name + ":" + value)
		if err != nil {
			return current, err
		}
		switch schema.PeerGroupKind(strings.ToLower(name)) {
		case schema.StatusPeers:
			next.Status = parsed.Status
		case schema.ValuationPeers:
			next.Valuation = parsed.Valuation
		case schema.OperationalPeers:
			next.Operational = parsed.Operational
		}
	}
	return next, nil
}

// parseWeightEdit parses "status.theme.metric.key=weight".
func parseWeightEdit(args string) (schema.CompanyStatus, string, string, float64, error) {
	args = strings.TrimSpace(args)
	idx := strings.LastIndex(args, "=")
	if idx < 0 {
		return "", "", "", 0, fmt.Errorf("expected status.theme.metric=weight, got '%s'", args)
	}
	return contract.ParseMetricWeightOverride(args[:idx] + ":" + args[idx+1:])
}

// writeTuneUpdate prints the top results of one applied edit.
func writeTuneUpdate(w io.Writer, cfg *contract.Config, generation uint64, pw schema.PeerGroupWeights, results []schema.ScoringResult) {
	ranked := topN(results, cfg.ResultLimit)
	header := "Current ranking"
	if generation > 0 {
		header = "Edit #" + strconv.FormatUint(generation, 10)
	}
	_, _ = fmt.Fprintf(w, "%s (peer weights status:%g,valuation:%g,operational:%g)\n", header, pw.Status, pw.Valuation, pw.Operational)
	for i, r := range ranked {
		_, _ = fmt.Fprintf(w, "%3d. %-30s %-10s %6.*f  %s\n",
			i+1, schema.TruncateName(r.Name, 30), r.Status, cfg.Precision, r.FinalScore, schema.GetPlainLabel(r.FinalScore))
	}
}
