// Package shell provides the interactive chat REPL for Nebula.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/holographic"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/session"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/spinner"
)

const prompt = "\033[36mnebula>\033[0m "

// Config holds shell configuration.
type Config struct {
	HistoryFile string

	// ExportDir is used by /export without an argument.
	ExportDir string

	// OnTurn, when set, receives every completed chat turn.
	OnTurn func(*session.Turn)
}

// Shell is the interactive command-line interface over one session.
type Shell struct {
	sess      *session.Session
	rl        *readline.Instance
	out       io.Writer
	errs      *nerrors.Formatter
	exportDir string
	isTTY     bool
	onTurn    func(*session.Turn)
}

// New creates a shell reading from the terminal.
func New(sess *session.Session, cfg Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewCompleter(sess.Store().Vocabulary),
	})
	if err != nil {
		return nil, nerrors.CommandError(nerrors.ErrShellInitFailed, "failed to initialise the line editor").
			WithCause(err)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	s := newShell(sess, rl.Stdout(), cfg.ExportDir, isTTY)
	s.rl = rl
	s.onTurn = cfg.OnTurn
	return s, nil
}

// newShell builds a shell without a line editor; Execute drives it.
func newShell(sess *session.Session, out io.Writer, exportDir string, isTTY bool) *Shell {
	return &Shell{
		sess:      sess,
		out:       out,
		errs:      &nerrors.Formatter{UseColor: isTTY, Writer: out, Indent: "  "},
		exportDir: exportDir,
		isTTY:     isTTY,
	}
}

// Run reads lines until /quit, EOF or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	fmt.Fprintln(s.out, "Type text to chat. Every message is remembered before the reply is built.")
	fmt.Fprintln(s.out, "Commands: /ingest, /load, /generate, /metrics, /session, /history, /export, /help, /quit")
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := s.Execute(line); err != nil {
			if err == errQuit {
				return nil
			}
			s.errs.Display(err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

// Execute handles one input line: a /command or a chat message.
func (s *Shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return s.handleMessage(line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit", "/q":
		return errQuit
	case "/help", "/h":
		s.printHelp()
	case "/ingest":
		return s.handleIngest(arg)
	case "/load":
		return s.handleLoad(arg)
	case "/generate":
		return s.handleGenerate(arg)
	case "/metrics":
		s.printMetrics(s.sess.Metrics())
	case "/session":
		s.printSession()
	case "/history":
		return s.handleHistory(arg)
	case "/export":
		return s.handleExport(arg)
	default:
		return nerrors.CommandError(nerrors.ErrCommandNotFound, "unknown command: "+cmd).
			WithSuggestion("Type /help to list commands")
	}
	return nil
}

func missingArgs(usage string) error {
	return nerrors.CommandError(nerrors.ErrCommandMissingArgs, "missing argument").
		WithSuggestion("Usage: " + usage)
}

func (s *Shell) handleMessage(text string) error {
	turn, err := s.sess.Submit(text)
	if err != nil {
		return err
	}
	if turn == nil {
		return nil
	}
	if s.onTurn != nil {
		s.onTurn(turn)
	}
	if len(turn.Report.Overflow) > 0 {
		s.warn(fmt.Sprintf("memory full, not indexed: %s", strings.Join(turn.Report.Overflow, " ")))
	}
	fmt.Fprintf(s.out, "%s\n", turn.Response)
	s.printSummary(turn.Metrics)
	return nil
}

func (s *Shell) handleIngest(text string) error {
	if text == "" {
		return missingArgs("/ingest <text>")
	}
	report, err := s.sess.Ingest(text)
	return s.reportIngest(report, err)
}

// reportIngest prints the report. A capacity error is shown as a warning
// since the rest of the text was kept.
func (s *Shell) reportIngest(report holographic.IngestReport, err error) error {
	if err != nil && !nerrors.IsCode(err, nerrors.ErrCapacityExceeded) {
		return err
	}
	fmt.Fprintf(s.out, "Ingested %d tokens: %d new, %d reinforced, %d new links\n",
		report.Tokens, len(report.Created), report.Reinforced, report.NewEdges)
	if len(report.Overflow) > 0 {
		s.warn(fmt.Sprintf("memory full, not indexed: %s", strings.Join(report.Overflow, " ")))
	}
	return nil
}

func (s *Shell) handleLoad(path string) error {
	if path == "" {
		return missingArgs("/load <file>")
	}

	var report holographic.IngestReport
	var ingestErr error
	err := spinner.Run(spinner.Config{
		Message:     "Loading " + path,
		ShowElapsed: true,
		Writer:      s.out,
		IsTTY:       &s.isTTY,
	}, "Loaded "+path, func() error {
		report, ingestErr = s.sess.IngestFile(path)
		if nerrors.IsCode(ingestErr, nerrors.ErrCapacityExceeded) {
			return nil
		}
		return ingestErr
	})
	if err != nil {
		return err
	}
	return s.reportIngest(report, ingestErr)
}

func (s *Shell) handleGenerate(prompt string) error {
	if prompt == "" {
		return missingArgs("/generate <prompt>")
	}
	fmt.Fprintln(s.out, s.sess.Generate(prompt))
	return nil
}

func (s *Shell) handleHistory(arg string) error {
	n := 10
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 {
			return nerrors.CommandError(nerrors.ErrCommandMissingArgs, "history length must be a non-negative integer").
				WithSuggestion("Usage: /history [n]  (0 shows everything)")
		}
		n = v
	}

	msgs := s.sess.History(n)
	if len(msgs) == 0 {
		fmt.Fprintln(s.out, "No messages yet.")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(s.out, "[%s] %-9s %s\n", m.Timestamp.Format("15:04:05"), m.Role, m.Content)
	}
	return nil
}

func (s *Shell) handleExport(dir string) error {
	if dir == "" {
		dir = s.exportDir
	}
	path, err := s.sess.Export(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Session exported to %s\n", path)
	return nil
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Chat:
  <text>               Remember the text and reply with a walk through memory

Commands:
  /ingest <text>       Remember text without replying
  /load <file>         Remember the contents of a text file
  /generate <prompt>   Reply without remembering the prompt (Tab completes words)
  /metrics             Show memory and simulator metrics
  /session             Show session details
  /history [n]         Show the last n messages (default 10, 0 for all)
  /export [dir]        Write the session transcript and metrics as JSON
  /help                Show this help
  /quit                Leave the shell
`)
}

func (s *Shell) printSummary(m session.Metrics) {
	fmt.Fprintf(s.out, "  nodes %d · avg strength %.3f · coherence %.4f · interference %.4f\n",
		m.TotalNodes, m.AverageStrength, m.QuantumMetrics.AverageCoherence, m.QuantumMetrics.InterferenceStrength)
}

func (s *Shell) printMetrics(m session.Metrics) {
	q := m.QuantumMetrics
	fmt.Fprintf(s.out, "Memory:\n")
	fmt.Fprintf(s.out, "  Total nodes:          %d\n", m.TotalNodes)
	fmt.Fprintf(s.out, "  Average strength:     %.4f\n", m.AverageStrength)
	fmt.Fprintf(s.out, "Simulator:\n")
	fmt.Fprintf(s.out, "  Coherence length:     %g m\n", q.CoherenceLength)
	fmt.Fprintf(s.out, "  Processing speed:     %.0f samples/s\n", q.ProcessingSpeed)
	fmt.Fprintf(s.out, "  Average coherence:    %.4f\n", q.AverageCoherence)
	fmt.Fprintf(s.out, "  Entanglement degree:  %.2f\n", q.EntanglementDegree)
	fmt.Fprintf(s.out, "  Quantum yield:        %.2f\n", q.QuantumYield)
	fmt.Fprintf(s.out, "  Interference:         %.4f\n", q.InterferenceStrength)
}

func (s *Shell) printSession() {
	st := s.sess.Stats()
	fmt.Fprintf(s.out, "Session: %s (%s)\n", s.sess.Name, s.sess.ID)
	fmt.Fprintf(s.out, "  Started:   %s\n", s.sess.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.out, "  Turns:     %d\n", st.TurnCount)
	fmt.Fprintf(s.out, "  Messages:  %d\n", st.MessageCount)
	fmt.Fprintf(s.out, "  Ingests:   %d\n", st.IngestCount)
	fmt.Fprintf(s.out, "  Memory:    %d nodes (%d indexed of %d), %d links\n",
		st.Memory.TotalNodes, st.Memory.IndexedNodes, st.Memory.Capacity, st.Memory.Edges)
}

func (s *Shell) warn(msg string) {
	if s.isTTY {
		fmt.Fprintf(s.out, "\033[33mwarning:\033[0m %s\n", msg)
		return
	}
	fmt.Fprintf(s.out, "warning: %s\n", msg)
}
