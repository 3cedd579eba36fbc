package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/mfterm/reader"
	"github.com/wippyai/mfterm/spec"
	"github.com/wippyai/mfterm/speclang"
	"github.com/wippyai/mfterm/tag"
)

var logger = zap.NewNop()

// Logger returns the command's logger.
func Logger() *zap.Logger {
	return logger
}

func main() {
	var (
		tagFile     = flag.String("tag", "", "Tag image to load at startup (.mfd)")
		keysFile    = flag.String("keys", "", "Key image to load at startup (.mfd)")
		specFile    = flag.String("spec", "", "Tag data specification to load at startup")
		sizeStr     = flag.String("size", "1k", "Tag size: 1k or 4k")
		readerName  = flag.String("reader", "", "PC/SC reader name (substring match, default first reader)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mfterm [flags] [command ...]")
		fmt.Fprintln(os.Stderr, "       mfterm -i            (interactive mode)")
		fmt.Fprintln(os.Stderr, "       mfterm < script      (one command per line)")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		setLoggers(l)
	}

	s := newSession(os.Stdout)
	s.readerName = *readerName
	if err := setup(s, *sizeStr, *tagFile, *keysFile, *specFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	switch {
	case *interactive || (flag.NArg() == 0 && stdinTTY):
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case flag.NArg() > 0:
		if err := runLines(ctx, s, flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		if err := runScript(ctx, s, os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func setLoggers(l *zap.Logger) {
	logger = l
	spec.SetLogger(l.Named("spec"))
	speclang.SetLogger(l.Named("speclang"))
	reader.SetLogger(l.Named("reader"))
}

// setup applies the startup flags to s.
func setup(s *session, size, tagFile, keysFile, specFile string) error {
	sz, err := tag.ParseSize(size)
	if err != nil {
		return err
	}
	s.size = sz

	if tagFile != "" {
		if s.tag, err = tag.Load(tagFile); err != nil {
			return err
		}
	}
	if keysFile != "" {
		if s.auth, err = tag.LoadAuth(keysFile); err != nil {
			return err
		}
	}
	if specFile != "" {
		if _, err := speclang.ImportFile(s.spec, specFile); err != nil {
			return err
		}
	}
	return nil
}

// runLines executes each line as a command, stopping at the first error
// or a quit command.
func runLines(ctx context.Context, s *session, lines []string) error {
	for _, line := range lines {
		if err := s.exec(ctx, line); err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
		if s.quit {
			break
		}
	}
	return nil
}

func runScript(ctx context.Context, s *session, r io.Reader) error {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return runLines(ctx, s, lines)
}
