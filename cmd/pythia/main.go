package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	arg "github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	isatty "github.com/mattn/go-isatty"
	yaml "gopkg.in/yaml.v2"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/golib/pylog"
	"github.com/pythiaco/pythia/interp"
	"github.com/pythiaco/pythia/matcher"
	"github.com/pythiaco/pythia/typegraph"
)

// options mirrors the optional YAML configuration file. Zero values keep
// the package defaults.
type options struct {
	Passes                  int  `yaml:"passes"`
	MaxLoadDepth            int  `yaml:"max_load_depth"`
	MaxDepth                int  `yaml:"max_depth"`
	MaxViewProduct          int  `yaml:"max_view_product"`
	Quick                   bool `yaml:"quick"`
	StrictParameterChecks   bool `yaml:"strict_parameter_checks"`
	CheckContainerMutations bool `yaml:"check_container_mutations"`
}

// quickViewProduct caps view enumeration in quick mode.
const quickViewProduct = 8

func main() {
	var args struct {
		Program string        `arg:"positional,required,help:YAML program to analyze"`
		Config  string        `arg:"help:YAML file with analysis options"`
		Trace   bool          `arg:"-t,help:log each executed op to stderr"`
		Dump    bool          `arg:"help:pretty-print the decoded program and exit"`
		Timeout time.Duration `arg:"help:abort the analysis after this long"`
		Quiet   bool          `arg:"-q,help:omit the stats footer"`
	}
	arg.MustParse(&args)

	src, err := loadProgram(args.Program)
	if err != nil {
		log.Fatalln(err)
	}
	if args.Dump {
		pretty.Fprintf(os.Stdout, "%# v\n", src)
		return
	}
	iopts, mopts, err := loadOptions(args.Config)
	if err != nil {
		log.Fatalln(err)
	}

	metrics := pyctx.InitializeMetrics()
	durations := pylog.NewDurations()
	logger := pylog.New(os.Stderr, "[pythia] ").WithDurations(durations)

	errs := diag.NewLog()
	actx := abstract.NewContext(decl.StdLoader(), errs)
	in, err := interp.New(actx, matcher.New(actx, mopts), iopts)
	if err != nil {
		log.Fatalln(err)
	}
	if args.Trace {
		in.SetTrace(os.Stderr)
	}

	start := time.Now()
	var module *abstract.Module
	run := func(ctx pyctx.Context) error {
		var err error
		module, err = in.Run(ctx, src)
		return err
	}
	ctx := pyctx.Background().WithLogger(logger)
	err = ctx.WithCancel(func(ctx pyctx.Context, cancel pyctx.CancelFunc) error {
		interrupted := make(chan os.Signal, 1)
		signal.Notify(interrupted, os.Interrupt)
		defer signal.Stop(interrupted)
		go func() {
			<-interrupted
			cancel()
		}()
		if args.Timeout > 0 {
			return ctx.WithTimeout(args.Timeout, run)
		}
		return run(ctx)
	})
	aborted := err != nil
	if aborted {
		if _, expired := err.(pyctx.ContextExpiredError); !expired {
			log.Fatalln(err)
		}
		if pyctx.IsDeadlineExceeded(err) {
			logger.Printf("analysis timed out after %s, results are partial", args.Timeout)
		} else {
			logger.Printf("analysis canceled, results are partial")
		}
	}
	durations.Record("analysis", start)

	if module != nil {
		printMembers(module)
	}
	printEvents(errs)

	if !args.Quiet {
		printFooter(logger, actx.Program, in.Stats(), errs.Len(), metrics.Read())
		durations.Flush(os.Stderr)
	}
	if errs.Len() > 0 || aborted {
		os.Exit(1)
	}
}

func loadProgram(path string) (*interp.Source, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading program")
	}
	var src interp.Source
	if err := yaml.UnmarshalStrict(buf, &src); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if src.Name == "" {
		return nil, errors.Errorf("%s: missing module name", path)
	}
	if err := src.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid program %s", path)
	}
	return &src, nil
}

func loadOptions(path string) (interp.Options, matcher.Options, error) {
	iopts := interp.DefaultOptions
	mopts := matcher.DefaultOptions()
	if path == "" {
		return iopts, mopts, nil
	}
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return iopts, mopts, errors.Wrapf(err, "reading options")
	}
	var opts options
	if err := yaml.UnmarshalStrict(buf, &opts); err != nil {
		return iopts, mopts, errors.Wrapf(err, "decoding %s", path)
	}
	if opts.Passes > 0 {
		iopts.Passes = opts.Passes
	}
	if opts.MaxLoadDepth > 0 {
		iopts.MaxLoadDepth = opts.MaxLoadDepth
	}
	if opts.MaxDepth > 0 {
		iopts.MaxDepth = opts.MaxDepth
	}
	if opts.MaxViewProduct > 0 {
		mopts.MaxViewProduct = opts.MaxViewProduct
	}
	if opts.Quick && mopts.MaxViewProduct > quickViewProduct {
		mopts.MaxViewProduct = quickViewProduct
	}
	mopts.StrictParameterChecks = opts.StrictParameterChecks
	mopts.CheckContainerMutations = opts.CheckContainerMutations
	return iopts, mopts, nil
}

// printMembers lists the inferred type of each module member, sorted by name.
func printMembers(module *abstract.Module) {
	members := module.Members()
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %s\n", name, renderVariable(members[name]))
	}
}

// renderVariable joins the distinct types a variable may hold.
func renderVariable(v *typegraph.Variable) string {
	var parts []string
	seen := make(map[string]bool)
	for _, d := range v.Data() {
		val, ok := d.(abstract.Value)
		if !ok {
			continue
		}
		s := renderValue(val)
		if !seen[s] {
			seen[s] = true
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return abstract.EmptyKind.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " | ")
}

func renderValue(v abstract.Value) string {
	switch v.Kind() {
	case abstract.InstanceKind:
		return v.Class().Name()
	case abstract.ClassKind:
		return "type[" + v.Name() + "]"
	case abstract.FunctionKind:
		return "def " + v.Name()
	case abstract.ModuleKind:
		return "module " + v.Name()
	default:
		return v.Kind().String()
	}
}

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func printEvents(errs *diag.Log) {
	color := isatty.IsTerminal(os.Stdout.Fd())
	for _, e := range errs.Events() {
		fmt.Println(renderEvent(e, color))
	}
}

// renderEvent formats one diagnostic the way a compiler would: position,
// kind, then the call and signature involved.
func renderEvent(e diag.Event, color bool) string {
	var b strings.Builder
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Pos.Line, e.Pos.Col)
	}
	if color {
		b.WriteString(ansiRed)
	}
	b.WriteString(e.Kind.String())
	if color {
		b.WriteString(ansiReset)
	}
	if e.Callee != "" {
		fmt.Fprintf(&b, " in call to %s", e.Callee)
	}
	if e.BadParam != "" {
		fmt.Fprintf(&b, ", parameter %q", e.BadParam)
	}
	if len(e.Passed) > 0 {
		fmt.Fprintf(&b, ": passed (%s)", strings.Join(e.Passed, ", "))
	}
	if e.Sig != "" {
		fmt.Fprintf(&b, ", expected %s", e.Sig)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func printFooter(logger *pylog.Logger, prog *typegraph.Program, stats interp.Stats, numEvents int, snap pyctx.MetricsSnapshot) {
	runID := uuid.New().String()
	logger.Printf("run %s: %s nodes, %s variables, %s bindings",
		runID,
		humanize.Comma(int64(prog.NumNodes())),
		humanize.Comma(int64(prog.NumVariables())),
		humanize.Comma(int64(prog.NumBindings())))
	logger.Printf("run %s: %d passes, %s calls, %s cache hits, %s stores, %d diagnostics",
		runID,
		stats.Passes,
		humanize.Comma(int64(stats.Calls)),
		humanize.Comma(int64(stats.CacheHits)),
		humanize.Comma(int64(stats.CacheStores)),
		numEvents)
	if n := snap.CallLimit + snap.DeadlineExceeded + snap.Canceled + snap.Other; n > 0 {
		logger.Printf("run %s: %d budget expiries", runID, n)
	}
}
