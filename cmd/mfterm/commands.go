package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/spec"
	"github.com/wippyai/mfterm/speclang"
	"github.com/wippyai/mfterm/tag"
)

type command struct {
	name string
	run  func(s *session, ctx context.Context, arg string) error
	// listed commands show up in help
	listed bool
	doc    string
}

var commands []command

func init() {
	commands = []command{
		{"help", (*session).help, true, "Display this text"},
		{"?", (*session).help, false, "Synonym for 'help'"},

		{"quit", (*session).quitCmd, true, "Exit the program"},
		{"exit", (*session).quitCmd, false, "Synonym for 'quit'"},

		{"load", (*session).loadTag, true, "file : Load tag data from a file"},
		{"save", (*session).saveTag, true, "file : Save tag data to a file"},

		{"read", (*session).readTag, true, "[A|B] : Read tag data from a physical tag"},

		{"print", (*session).print, true, "[1k|4k] : Print tag data"},
		{"print keys", (*session).printKeys, true, "[1k|4k] : Print tag's keys"},

		{"set", (*session).set, true, "#block #offset = xx xx xx : Set tag data"},
		{"clear", (*session).clearTag, true, "Zero all tag data"},

		{"keys load", (*session).keysLoad, true, "file : Load keys from a file"},
		{"keys save", (*session).keysSave, true, "file : Save keys to a file"},
		{"keys set", (*session).keysSet, true, "A|B #sector = key : Set a key value"},
		{"keys import", (*session).keysImport, true, "Import keys from the current tag"},
		{"keys", (*session).keysPrint, true, "[1k|4k] : Print the keys"},

		{"spec load", (*session).specLoad, true, "file : Load a tag data specification"},
		{"spec clear", (*session).specClear, true, "Unload the specification"},
		{"spec", (*session).specPrint, true, "Print the specification types and layout"},

		{"copy", (*session).copyPath, true, ".path : Copy the data of a field to the clipboard"},
		{".", (*session).dumpPath, true, "Print the tag data of a field, e.g. '.sectors.data'"},
	}
}

// findCommand returns the command with the longest name that prefixes
// line on a word boundary, and the argument text after it.
func findCommand(line string) (*command, string) {
	var best *command
	for i := range commands {
		c := &commands[i]
		if !strings.HasPrefix(line, c.name) {
			continue
		}
		rest := line[len(c.name):]
		if c.name != "." && rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		if best == nil || len(c.name) > len(best.name) {
			best = c
		}
	}
	if best == nil {
		return nil, ""
	}
	if best.name == "." {
		return best, line
	}
	return best, strings.TrimSpace(line[len(best.name):])
}

// exec runs one command line.
func (s *session) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	c, arg := findCommand(line)
	if c == nil {
		return errors.NotFound(errors.PhaseCommand, "command", strings.Fields(line)[0])
	}
	Logger().Debug("command", zap.String("name", c.name), zap.String("arg", arg))
	return c.run(s, ctx, arg)
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) help(_ context.Context, arg string) error {
	width := 0
	for _, c := range commands {
		width = max(width, len(c.name))
	}
	line := func(c command) {
		s.printf("    %-*s    %s.\n", width, c.name, c.doc)
	}

	if arg != "" {
		for _, c := range commands {
			if c.name == arg {
				line(c)
				return nil
			}
		}
		s.printf("No commands match '%s'\n", arg)
	}
	for _, c := range commands {
		if c.listed {
			line(c)
		}
	}
	return nil
}

func (s *session) quitCmd(context.Context, string) error {
	s.quit = true
	return nil
}

func requireArg(name, arg string) error {
	if arg == "" {
		return errors.InvalidInput(errors.PhaseCommand, name+": missing argument")
	}
	return nil
}

func (s *session) loadTag(_ context.Context, arg string) error {
	if err := requireArg("load", arg); err != nil {
		return err
	}
	t, err := tag.Load(arg)
	if err != nil {
		return err
	}
	s.tag = t
	s.printf("Successfully loaded tag from: %s\n", arg)
	return nil
}

func (s *session) saveTag(_ context.Context, arg string) error {
	if err := requireArg("save", arg); err != nil {
		return err
	}
	if err := s.tag.Save(arg); err != nil {
		return err
	}
	s.printf("Successfully wrote tag to: %s\n", arg)
	return nil
}

func (s *session) readTag(ctx context.Context, arg string) error {
	kt := tag.KeyA
	if arg != "" {
		var err error
		if kt, err = tag.ParseKeyType(arg); err != nil {
			return err
		}
	}

	r, err := s.openReader(ctx, s.readerName)
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := r.ReadTag(ctx, s.auth, kt, s.size)
	if err != nil {
		return err
	}
	s.tag = res.Tag
	s.printf("Read %s tag, UID %s\n", s.size, hex.EncodeToString(res.UID))
	for _, sector := range res.Failed {
		s.printf("Authentication with key %s failed for sector %#04x\n", kt, sector)
	}
	return nil
}

// sizeArg parses an optional 1k|4k argument, defaulting to the session size.
func (s *session) sizeArg(arg string) (tag.Size, error) {
	if arg == "" {
		return s.size, nil
	}
	if len(strings.Fields(arg)) > 1 {
		return 0, errors.InvalidInput(errors.PhaseCommand, "too many arguments")
	}
	return tag.ParseSize(arg)
}

func (s *session) print(_ context.Context, arg string) error {
	size, err := s.sizeArg(arg)
	if err != nil {
		return err
	}
	return s.tag.Print(s.out, size)
}

func (s *session) printKeys(_ context.Context, arg string) error {
	size, err := s.sizeArg(arg)
	if err != nil {
		return err
	}
	return s.tag.PrintKeys(s.out, size)
}

func parseInt(what, v string) (int, error) {
	n, err := strconv.ParseInt(v, 0, 32)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseCommand, errors.KindInvalidInput, err, fmt.Sprintf("%s %q", what, v))
	}
	return int(n), nil
}

// splitAssign splits "a b = c d" into its left and right fields. The '='
// is optional when the left side has want fields.
func splitAssign(arg string, want int) ([]string, []string, error) {
	left, right, found := strings.Cut(arg, "=")
	if !found {
		f := strings.Fields(arg)
		if len(f) <= want {
			return nil, nil, errors.InvalidInput(errors.PhaseCommand, "missing value")
		}
		return f[:want], f[want:], nil
	}
	l, r := strings.Fields(left), strings.Fields(right)
	if len(l) != want || len(r) == 0 {
		return nil, nil, errors.InvalidInput(errors.PhaseCommand, "malformed assignment")
	}
	return l, r, nil
}

func (s *session) set(_ context.Context, arg string) error {
	l, r, err := splitAssign(arg, 2)
	if err != nil {
		return err
	}
	block, err := parseInt("block", l[0])
	if err != nil {
		return err
	}
	offset, err := parseInt("offset", l[1])
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(strings.Join(r, ""))
	if err != nil {
		return errors.Wrap(errors.PhaseCommand, errors.KindInvalidInput, err, "data bytes")
	}
	return s.tag.Set(block, offset, data)
}

func (s *session) clearTag(context.Context, string) error {
	s.tag.Clear()
	return nil
}

func (s *session) keysLoad(_ context.Context, arg string) error {
	if err := requireArg("keys load", arg); err != nil {
		return err
	}
	auth, err := tag.LoadAuth(arg)
	if err != nil {
		return err
	}
	s.auth = auth
	s.printf("Successfully loaded keys from: %s\n", arg)
	return nil
}

func (s *session) keysSave(_ context.Context, arg string) error {
	if err := requireArg("keys save", arg); err != nil {
		return err
	}
	if err := s.auth.Save(arg); err != nil {
		return err
	}
	s.printf("Successfully wrote keys to: %s\n", arg)
	return nil
}

func (s *session) keysSet(_ context.Context, arg string) error {
	l, r, err := splitAssign(arg, 2)
	if err != nil {
		return err
	}
	if len(r) != 1 {
		return errors.InvalidInput(errors.PhaseCommand, "expected a single key")
	}
	kt, err := tag.ParseKeyType(l[0])
	if err != nil {
		return err
	}
	sector, err := parseInt("sector", l[1])
	if err != nil {
		return err
	}
	if sector < 0 || sector >= tag.SectorCount(tag.Size4K) {
		return errors.OutOfBounds(errors.PhaseCommand, nil, sector, tag.SectorCount(tag.Size4K))
	}
	key, err := tag.ParseKey(r[0])
	if err != nil {
		return err
	}
	s.auth.SetKey(kt, tag.SectorToTrailer(sector), key)
	return nil
}

func (s *session) keysImport(context.Context, string) error {
	s.auth.ImportAuth(s.tag)
	s.printf("Imported keys from the current tag\n")
	return nil
}

func (s *session) keysPrint(_ context.Context, arg string) error {
	size, err := s.sizeArg(arg)
	if err != nil {
		return err
	}
	return s.auth.PrintKeys(s.out, size)
}

func (s *session) specLoad(_ context.Context, arg string) error {
	if err := requireArg("spec load", arg); err != nil {
		return err
	}
	tree, err := speclang.ImportFile(s.spec, arg)
	if err != nil {
		return err
	}
	s.printf("Successfully loaded spec from: %s (%v)\n", arg, tree.Root().Size)
	return nil
}

func (s *session) specClear(context.Context, string) error {
	s.spec.Clear()
	return nil
}

func (s *session) specPrint(context.Context, string) error {
	if s.spec.Tree() == nil {
		s.printf("No specification loaded\n")
		return nil
	}
	if err := spec.PrintTypes(s.out, s.spec.Registry()); err != nil {
		return err
	}
	s.printf("\n")
	return spec.PrintInstances(s.out, s.spec.Tree())
}

func (s *session) resolve(path string) (*spec.Instance, error) {
	tree := s.spec.Tree()
	if tree == nil {
		return nil, errors.NotInitialized(errors.PhaseCommand, "specification")
	}
	return tree.ResolveErr(path)
}

func (s *session) dumpPath(_ context.Context, arg string) error {
	in, err := s.resolve(arg)
	if err != nil {
		return err
	}
	return s.tag.Dump(s.out, in.Offset, in.Size)
}

func (s *session) copyPath(_ context.Context, arg string) error {
	if err := requireArg("copy", arg); err != nil {
		return err
	}
	in, err := s.resolve(arg)
	if err != nil {
		return err
	}
	data, err := s.tag.Range(in.Offset, in.Size)
	if err != nil {
		return err
	}
	if err := s.copyText(hex.EncodeToString(data)); err != nil {
		return errors.IO(errors.PhaseCommand, "clipboard", err)
	}
	s.printf("Copied %d bytes to the clipboard\n", len(data))
	return nil
}
