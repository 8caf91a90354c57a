package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/pkg/types"
)

const shellPrompt = "todos> "

type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func newBasicLineInput(in io.Reader, out io.Writer) *basicLineInput {
	return &basicLineInput{reader: bufio.NewReader(in), out: out}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            shellPrompt,
		HistoryFile:       historyPath,
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

// newLineInput uses readline when attached to the process stdin and falls
// back to plain line reading otherwise.
func (a *app) newLineInput(cmd *cobra.Command) lineInput {
	in := cmd.InOrStdin()
	if in == os.Stdin {
		rl, err := newReadlineInput(paths.HistoryFile(a.configDir))
		if err == nil {
			return rl
		}
		a.logger.Debug("readline unavailable, using plain input", "error", err)
	}
	return newBasicLineInput(in, cmd.OutOrStdout())
}

func (a *app) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one open store",
		Long: `Shell opens the configured store once and reads commands line by line.
Each line is a todos command without the leading "todos", for example:

  create Write spec
  update 1 --status=true
  get 1

Type "help" for the command list and "exit" or Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil {
				return userError(errors.New("already inside a shell"))
			}
			return a.withStore(func(s types.Store) error {
				backend, ok := s.(types.Backend)
				if !ok {
					return sysError(errors.New("store does not support sessions"))
				}
				input := a.newLineInput(cmd)
				defer input.Close()
				return a.runShell(cmd, backend, input)
			})
		},
	}
}

// runShell dispatches each input line to a fresh command tree bound to store
// until EOF or an exit command.
func (a *app) runShell(cmd *cobra.Command, store types.Backend, input lineInput) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	for {
		line, err := input.ReadLine(shellPrompt)
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return sysError(fmt.Errorf("read input: %w", err))
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		args, err := splitArgs(line)
		if err != nil {
			printError(errOut, err)
			continue
		}
		if args[0] == "help" {
			args = append([]string{"--help"}, args[1:]...)
		}

		session := &app{
			configDir: a.configDir,
			cfg:       a.cfg,
			logger:    a.logger,
			store:     store,
		}
		root := session.rootCmd()
		if a.flags.jsonMode {
			_ = root.PersistentFlags().Set("json", "true")
		}
		root.SetArgs(args)
		root.SetIn(cmd.InOrStdin())
		root.SetOut(out)
		root.SetErr(errOut)
		if err := root.Execute(); err != nil {
			printError(errOut, err)
		}
	}
}

// splitArgs splits a shell line into arguments. Single and double quotes
// group words; a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
