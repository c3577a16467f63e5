package main

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	kongcompletion "github.com/jotaen/kong-completion"
	"golang.org/x/term"
	"golang.org/x/text/language"

	uniqname "code.selman.me/uniqname"
	"code.selman.me/uniqname/internal/config"
	"code.selman.me/uniqname/internal/nameset"
	"code.selman.me/uniqname/locale"
	"code.selman.me/uniqname/naming"
)

type CLI struct {
	Version    kong.VersionFlag          `help:"Print version."`
	Config     string                    `help:"Config file path." env:"UNIQNAME_CONFIG" type:"path"`
	Locale     string                    `help:"Locale whose numbering template is used." env:"UNIQNAME_LOCALE" completion-predictor:"locale"`
	Verbose    bool                      `short:"v" help:"Log debug output to stderr."`
	Make       MakeCmd                   `cmd:"" help:"Print a unique variant of a name."`
	Batch      BatchCmd                  `cmd:"" help:"Make each name read from stdin unique."`
	Parse      ParseCmd                  `cmd:"" help:"Split a numbered name into base and number."`
	Check      CheckCmd                  `cmd:"" help:"Verify every template matches its pattern."`
	Locales    LocalesCmd                `cmd:"" help:"List known locales and their templates."`
	Init       InitCmd                   `cmd:"" help:"Create default config file."`
	ConfigCmd  ConfigCmd                 `cmd:"" name:"config" help:"Print effective configuration."`
	Completion kongcompletion.Completion `cmd:"" help:"Print shell completion setup instructions."`
}

// runtime is bound into every command's Run method.
type runtime struct {
	cfg        *config.Config
	configPath string
	locale     string
	stdin      io.Reader
	stdout     io.Writer
	stdinTTY   bool
	getenv     func(string) string
}

func (rt *runtime) entries() []locale.Entry {
	return locale.Merge(locale.Builtin(), rt.cfg.Templates)
}

func (rt *runtime) tag() language.Tag {
	if s := cmp.Or(rt.locale, rt.cfg.Naming.Locale); s != "" {
		return locale.ParsePOSIX(s)
	}
	return locale.Detect(rt.getenv)
}

func (rt *runtime) namer() (*naming.Namer, error) {
	catalog, err := locale.LoadCatalog(rt.entries())
	if err != nil {
		return nil, err
	}
	tag := rt.tag()
	tmpl := catalog.Template(tag)
	slog.Debug("selected template", "locale", tag, "format", tmpl.FormatString(), "pattern", tmpl.Pattern())
	return naming.New(tmpl), nil
}

// existingFlags are shared by make and batch.
type existingFlags struct {
	Existing     []string `short:"e" sep:"none" placeholder:"FILE" help:"File of names already in use, one per line (repeatable, - for stdin)."`
	Start        *int     `help:"First number for a bare name (default from config)."`
	AlwaysNumber *string  `name:"always-number" placeholder:"NAME" help:"Always number a name equal to this."`
}

func (f *existingFlags) load(rt *runtime, withStdin bool) (naming.Names, error) {
	set := naming.NewNames()
	usedStdin := false
	for _, path := range f.Existing {
		if path == "-" {
			usedStdin = true
			if err := nameset.ReadInto(set, rt.stdin); err != nil {
				return nil, err
			}
			continue
		}
		if err := nameset.ReadFile(set, path); err != nil {
			return nil, err
		}
	}
	if withStdin && !usedStdin && !rt.stdinTTY {
		if err := nameset.ReadInto(set, rt.stdin); err != nil {
			return nil, err
		}
	}
	slog.Debug("loaded existing names", "count", len(set))
	return set, nil
}

func (f *existingFlags) options(cfg *config.Config) []naming.Option {
	start := cfg.Naming.Start
	if f.Start != nil {
		start = *f.Start
	}
	opts := []naming.Option{naming.WithStart(start)}
	switch {
	case f.AlwaysNumber != nil:
		opts = append(opts, naming.AlwaysNumber(*f.AlwaysNumber))
	case cfg.Naming.AlwaysNumber != "":
		opts = append(opts, naming.AlwaysNumber(cfg.Naming.AlwaysNumber))
	}
	return opts
}

type MakeCmd struct {
	Name string        `arg:"" help:"Candidate name."`
	Opts existingFlags `embed:""`
}

func (cmd *MakeCmd) Run(rt *runtime) error {
	n, err := rt.namer()
	if err != nil {
		return err
	}
	existing, err := cmd.Opts.load(rt, true)
	if err != nil {
		return err
	}
	name := n.MakeUnique(cmd.Name, existing, cmd.Opts.options(rt.cfg)...)
	slog.Debug("made unique", "name", cmd.Name, "result", name)
	_, err = fmt.Fprintln(rt.stdout, name)
	return err
}

type BatchCmd struct {
	Opts existingFlags `embed:""`
}

func (cmd *BatchCmd) Run(rt *runtime) error {
	for _, path := range cmd.Opts.Existing {
		if path == "-" {
			return fmt.Errorf("batch reads candidates from stdin; -e - is not allowed")
		}
	}

	n, err := rt.namer()
	if err != nil {
		return err
	}
	existing, err := cmd.Opts.load(rt, false)
	if err != nil {
		return err
	}
	candidates, err := nameset.Lines(rt.stdin)
	if err != nil {
		return err
	}

	opts := cmd.Opts.options(rt.cfg)
	w := bufio.NewWriter(rt.stdout)
	for _, c := range candidates {
		name := n.MakeUnique(c, existing, opts...)
		existing.Add(name)
		fmt.Fprintln(w, name)
	}
	return w.Flush()
}

type ParseCmd struct {
	Name string `arg:"" help:"Name to split."`
}

func (cmd *ParseCmd) Run(rt *runtime) error {
	n, err := rt.namer()
	if err != nil {
		return err
	}
	base, num, ok := n.Template().Parse(cmd.Name)
	if !ok {
		return &commandExitError{code: 1, stderr: fmt.Sprintf("%q is not a numbered name\n", cmd.Name)}
	}
	_, err = fmt.Fprintf(rt.stdout, "%s\t%d\n", base, num)
	return err
}

type CheckCmd struct{}

func (cmd *CheckCmd) Run(rt *runtime) error {
	failed := 0
	for _, e := range rt.entries() {
		if _, err := locale.LoadCatalog([]locale.Entry{e}); err != nil {
			failed++
			fmt.Fprintf(rt.stdout, "FAIL %s: %v\n", e.Locale, err)
			continue
		}
		fmt.Fprintf(rt.stdout, "ok   %s\n", e.Locale)
	}
	if failed > 0 {
		return &commandExitError{code: 1, stderr: fmt.Sprintf("%d template(s) do not match their pattern\n", failed)}
	}
	return nil
}

type LocalesCmd struct{}

func (cmd *LocalesCmd) Run(rt *runtime) error {
	catalog, err := locale.LoadCatalog(rt.entries())
	if err != nil {
		return err
	}
	active := matchedTag(catalog, rt.tag())

	w := tabwriter.NewWriter(rt.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LOCALE\tFORMAT\tPATTERN\tACTIVE")
	tags := catalog.Locales()
	for i, e := range catalog.Entries() {
		mark := ""
		if tags[i] == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tags[i], e.Format, e.Pattern, mark)
	}
	return w.Flush()
}

// matchedTag returns the catalog tag whose template serves tag.
func matchedTag(c *locale.Catalog, tag language.Tag) language.Tag {
	want := c.Template(tag)
	for _, t := range c.Locales() {
		if c.Template(t) == want {
			return t
		}
	}
	return language.Und
}

type InitCmd struct{}

func (cmd *InitCmd) Run(rt *runtime) error {
	path := rt.configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(rt.stdout, "created %s\n", path)
	return nil
}

type ConfigCmd struct{}

func (cmd *ConfigCmd) Run(rt *runtime) error {
	return toml.NewEncoder(rt.stdout).Encode(rt.cfg)
}

type exitCoder interface {
	ExitCode() int
}

type stderrProvider interface {
	Stderr() string
}

type commandExitError struct {
	code   int
	stderr string
}

func (e *commandExitError) Error() string {
	if e.stderr != "" {
		return strings.TrimSuffix(e.stderr, "\n")
	}
	return "exit with code " + strconv.Itoa(e.code)
}

func (e *commandExitError) ExitCode() int {
	return e.code
}

func (e *commandExitError) Stderr() string {
	return e.stderr
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(h))
}

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("uniqname"),
		kong.Description("Make names unique by appending or bumping a serial number."),
		kong.UsageOnError(),
		kong.Vars{"version": uniqname.Version()},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kongcompletion.Register(parser, kongcompletion.WithPredictor("locale", localePredictor{}))

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.Printf("%s", err)
		parser.Exit(1)
		return
	}
	setupLogging(cli.Verbose)

	cfg, err := loadConfig(cli.Config)
	ctx.FatalIfErrorf(err)

	rt := &runtime{
		cfg:        cfg,
		configPath: cli.Config,
		locale:     cli.Locale,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stdinTTY:   term.IsTerminal(int(os.Stdin.Fd())),
		getenv:     os.Getenv,
	}
	err = ctx.Run(rt)
	if err == nil {
		return
	}

	var ec exitCoder
	if errors.As(err, &ec) {
		var sp stderrProvider
		if errors.As(err, &sp) {
			if stderr := sp.Stderr(); stderr != "" {
				fmt.Fprint(os.Stderr, stderr)
			}
		}
		os.Exit(ec.ExitCode())
	}

	ctx.FatalIfErrorf(err)
}
