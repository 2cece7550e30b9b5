// Package main provides the CLI entrypoint for volgen.
//
// volgen generates volatile mirror views of register-block structs:
//   - Go structs annotated with //volgen:struct, loaded with go/packages
//   - register blocks described in a YAML schema
//
// Commands:
//
//	volgen gen     -pkg <pattern> | -schema <file> [-out dir] [-file name]
//	volgen check   -pkg <pattern> | -schema <file>
//	volgen inspect -pkg <pattern> | -schema <file> [-dump]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"volgen/internal/analyze"
	"volgen/internal/common"
	"volgen/internal/diagnostic"
	"volgen/internal/gen"
	"volgen/internal/layout"
	"volgen/internal/logging"
	"volgen/internal/report"
	"volgen/internal/schema"
)

const usage = `volgen - volatile register-block views for Go

Usage:
  volgen gen     -pkg <pattern> | -schema <file> [flags]
  volgen check   -pkg <pattern> | -schema <file> [flags]
  volgen inspect -pkg <pattern> | -schema <file> [-dump] [flags]

Run "volgen <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the flags shared by every command.
type options struct {
	pkg         string
	schema      string
	out         string
	file        string
	packageName string
	volatile    string
	goarch      string
	comments    bool
	verbose     bool
	dump        bool
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "gen", "check", "inspect":
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "volgen: unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	opts, err := parseFlags(cmd, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		fmt.Fprintln(stderr, "volgen:", err)

		return 2
	}

	if opts.verbose {
		l, err := logging.New(true)
		if err != nil {
			fmt.Fprintln(stderr, "volgen:", err)
			return 1
		}

		logging.SetLogger(l)

		defer func() {
			_ = l.Sync()
			logging.SetLogger(nil)
		}()
	}

	units, diags, err := load(opts)
	if err != nil {
		fmt.Fprintln(stderr, "volgen:", err)
		return 1
	}

	switch cmd {
	case "gen":
		err = generate(opts, units, &diags)
	case "inspect":
		err = inspect(opts, units, diags, stdout)
	}

	if cmd == "check" && !diags.HasErrors() {
		fmt.Fprintf(stdout, "ok: %d structs\n", countStructs(units))
	}

	if cmd != "inspect" || diags.HasErrors() {
		if perr := report.NewPrinter(stderr).Diagnostics(diags); perr != nil && err == nil {
			err = perr
		}
	}

	if err != nil {
		fmt.Fprintln(stderr, "volgen:", err)
		return 1
	}

	if diags.HasErrors() {
		return 1
	}

	return 0
}

func parseFlags(cmd string, args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("volgen "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.pkg, "pkg", "", "Go package `pattern` with //volgen:struct annotations")
	fs.StringVar(&opts.schema, "schema", "", "YAML schema `file`")
	fs.StringVar(&opts.goarch, "goarch", "", "target `arch` (default: $GOARCH or the host's)")
	fs.BoolVar(&opts.verbose, "v", false, "log progress to stderr")

	if cmd == "gen" {
		def := gen.DefaultGeneratorConfig()
		fs.StringVar(&opts.out, "out", "", "output `dir` (default: the package or schema directory)")
		fs.StringVar(&opts.file, "file", def.Filename, "generated file `name`")
		fs.StringVar(&opts.packageName, "package", "", "generated package `name` for -schema (default: from the schema)")
		fs.StringVar(&opts.volatile, "volatile", def.VolatileImport, "import `path` of the volatile package")
		fs.BoolVar(&opts.comments, "comments", def.GenerateComments, "emit doc comments")
	}

	if cmd == "inspect" {
		fs.BoolVar(&opts.dump, "dump", false, "dump the layout model instead of tables")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %v", fs.Args())
	}

	switch {
	case opts.pkg == "" && opts.schema == "":
		return nil, errors.New("one of -pkg or -schema is required")
	case opts.pkg != "" && opts.schema != "":
		return nil, errors.New("-pkg and -schema are mutually exclusive")
	}

	if opts.goarch == "" {
		opts.goarch = os.Getenv("GOARCH")
	}

	return opts, nil
}

// unit is one group of layouts generated into one file.
type unit struct {
	packageName string
	dir         string
	set         *layout.Set
	imports     map[string]string
}

func load(opts *options) ([]unit, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	a, err := analyze.NewAnalyzer(analyze.Config{GOARCH: opts.goarch})
	if err != nil {
		return nil, diags, err
	}

	resolveOpts := layout.Options{Sizes: a.Sizes()}

	if opts.schema != "" {
		f, err := schema.LoadFile(opts.schema)
		if err != nil {
			return nil, diags, err
		}

		structs, d := f.Describe(a.Sizes(), opts.schema)
		diags.Merge(d)

		if d.HasErrors() {
			return nil, diags, nil
		}

		name := opts.packageName
		if name == "" {
			name = f.Package
		}

		dir := filepath.Dir(opts.schema)
		if name == "" {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, diags, err
			}

			name = filepath.Base(abs)
		}

		set, d := layout.Resolve(structs, resolveOpts)
		diags.Merge(d)

		if set == nil {
			return nil, diags, nil
		}

		logResolved(name, set)

		return []unit{{packageName: name, dir: dir, set: set}}, diags, nil
	}

	graph, err := a.LoadPackages(opts.pkg)
	if err != nil {
		return nil, diags, err
	}

	diags.Merge(graph.Diagnostics)

	var units []unit

	for _, p := range graph.Packages {
		set, d := layout.Resolve(p.Structs, resolveOpts)
		diags.Merge(d)

		if set == nil {
			continue
		}

		logResolved(p.Path, set)

		units = append(units, unit{packageName: p.Name, dir: p.Dir, set: set, imports: p.Imports})
	}

	if common.IsEmpty(graph.Structs()) && !diags.HasErrors() {
		diags.AddWarning("no-structs", "no //volgen:struct declarations found in "+opts.pkg, "", "")
	}

	return units, diags, nil
}

func countStructs(units []unit) int {
	n := 0
	for _, u := range units {
		n += len(u.set.Layouts)
	}

	return n
}

func logResolved(name string, set *layout.Set) {
	logging.Logger().Debug("layouts resolved",
		zap.String("package", name),
		zap.Int("structs", len(set.Layouts)),
		zap.Int("variants", len(set.Variants())))
}

// generate renders every unit before writing any file, so a failure leaves
// no partial output.
func generate(opts *options, units []unit, diags *diagnostic.Diagnostics) error {
	for _, u := range units {
		diags.Merge(gen.Check(u.set))
	}

	if diags.HasErrors() {
		return nil
	}

	type output struct {
		dir  string
		file *gen.GeneratedFile
	}

	outputs := make([]output, 0, len(units))

	for _, u := range units {
		dir := u.dir
		if opts.out != "" {
			dir = opts.out
		}

		g := gen.NewGenerator(gen.GeneratorConfig{
			PackageName:      u.packageName,
			OutputDir:        dir,
			Filename:         opts.file,
			VolatileImport:   opts.volatile,
			GenerateComments: opts.comments,
		})

		file, err := g.Generate(gen.Input{Set: u.set, Imports: u.imports})
		if err != nil {
			return fmt.Errorf("generating package %s: %w", u.packageName, err)
		}

		outputs = append(outputs, output{dir: dir, file: file})
	}

	for _, o := range outputs {
		if err := gen.WriteFiles([]gen.GeneratedFile{*o.file}, o.dir); err != nil {
			return err
		}

		logging.Logger().Debug("file written",
			zap.String("path", filepath.Join(o.dir, o.file.Filename)),
			zap.Int("bytes", len(o.file.Content)))
	}

	return nil
}

func inspect(opts *options, units []unit, diags diagnostic.Diagnostics, stdout io.Writer) error {
	if diags.HasErrors() {
		return nil
	}

	p := report.NewPrinter(stdout)

	for i, u := range units {
		if i > 0 {
			fmt.Fprintln(stdout)
		}

		if opts.dump {
			p.Dump(u.set.Layouts)
			continue
		}

		if err := p.Set(u.set); err != nil {
			return err
		}
	}

	if !opts.dump {
		return p.Diagnostics(diagnostic.Diagnostics{Warnings: diags.Warnings, Infos: diags.Infos})
	}

	return nil
}
