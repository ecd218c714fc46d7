package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lunixbochs/readbin/go/loader"
	"github.com/lunixbochs/readbin/go/logflags"
	"github.com/lunixbochs/readbin/go/models"
)

// Options holds the views selected on the command line.
type Options struct {
	Header    bool
	Program   bool
	Section   bool
	Dump      bool
	All       bool
	Analyze   bool
	Funcs     bool
	Prefix    string
	HexDump   bool
	Diff      string
	Histogram bool
	Demangle  bool
	Raw       bool
	Base      uint64
}

// any reports whether a view was requested.
func (o *Options) any() bool {
	return o.Header || o.Program || o.Section || o.Dump || o.All || o.Analyze ||
		o.Funcs || o.HexDump || o.Diff != "" || o.Histogram
}

type ReadbinCmd struct {
	Config  *models.Config
	Options Options
	Out     io.Writer
	Err     io.Writer

	color   bool
	noColor bool
	root    *cobra.Command
}

// NewReadbinCmd builds the root command. A nil out writes to stdout
// through a colorable writer chosen once the config is known.
func NewReadbinCmd(out, errOut io.Writer) *ReadbinCmd {
	c := &ReadbinCmd{Out: out, Err: errOut}
	if c.Err == nil {
		c.Err = os.Stderr
	}
	cfg := models.DefaultConfig()
	root := &cobra.Command{
		Use:           "readbin <file>",
		Short:         "Inspect ELF and PE executables.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(args[0])
		},
	}
	c.addViewFlags(root.Flags())
	c.addConfigFlags(root.PersistentFlags(), cfg)
	c.Config = cfg
	c.root = root
	return c
}

func (c *ReadbinCmd) addViewFlags(fs *pflag.FlagSet) {
	o := &c.Options
	fs.BoolVarP(&o.Header, "header", "e", false, "show the file header (default)")
	fs.BoolVarP(&o.Program, "program", "p", false, "show program headers and dump their contents")
	fs.BoolVarP(&o.Section, "section", "s", false, "show section headers")
	fs.BoolVarP(&o.Dump, "dump", "d", false, "disassemble executable sections")
	fs.BoolVarP(&o.All, "all", "a", false, "show the file, program and section headers")
	fs.BoolVar(&o.Analyze, "analyze", false, "disassemble each function and count instructions")
	fs.BoolVar(&o.Funcs, "funcs", false, "list the function table")
	fs.StringVar(&o.Prefix, "prefix", "", "only list functions whose name starts with this")
	fs.BoolVar(&o.HexDump, "hexdump", false, "hex dump the whole file")
	fs.StringVar(&o.Diff, "diff", "", "hex diff against another file")
	fs.BoolVar(&o.Histogram, "histogram", false, "show a byte histogram and entropy")
	fs.BoolVar(&o.Demangle, "demangle", false, "demangle C++ symbols using c++filt")
	fs.BoolVar(&o.Raw, "raw", false, "treat the file as flat machine code (use --bits to pick the mode)")
	fs.Uint64Var(&o.Base, "base", 0, "load address for --raw")
}

func (c *ReadbinCmd) addConfigFlags(fs *pflag.FlagSet, cfg *models.Config) {
	fs.IntVar(&cfg.Bits, "bits", 0, "decoder mode (16, 32 or 64); 0 follows the file")
	fs.StringVar(&cfg.Syntax, "syntax", cfg.Syntax, "assembly syntax (intel or gnu)")
	fs.IntVar(&cfg.HexWidth, "width", cfg.HexWidth, "bytes per hex dump row")
	fs.BoolVar(&c.color, "color", false, "force colored output")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	fs.StringVar(&cfg.LogLayers, "log", "", "comma separated log layers (loader, disas, cmd, all)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "print recoverable parse warnings")
}

func (c *ReadbinCmd) Command() *cobra.Command {
	return c.root
}

// setup overlays the config file with the flags that were set.
func (c *ReadbinCmd) setup(cmd *cobra.Command) error {
	file, err := models.LoadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("bits") {
		c.Config.Bits = file.Bits
	}
	if !flags.Changed("syntax") {
		c.Config.Syntax = file.Syntax
	}
	if !flags.Changed("width") {
		c.Config.HexWidth = file.HexWidth
	}
	if !flags.Changed("log") {
		c.Config.LogLayers = file.LogLayers
	}
	if !flags.Changed("verbose") {
		c.Config.Verbose = file.Verbose
	}
	c.Config.HistogramWidth = file.HistogramWidth
	c.Config.Color = file.Color
	if c.color {
		c.Config.Color = true
	}
	if c.noColor {
		c.Config.Color = false
	}
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if err := logflags.Setup(c.Config.LogLayers); err != nil {
		return err
	}
	if c.Out == nil {
		if c.Config.Color {
			c.Out = colorable.NewColorableStdout()
		} else {
			c.Out = colorable.NewNonColorable(os.Stdout)
		}
	}
	return nil
}

// Run loads path and prints each requested view.
func (c *ReadbinCmd) Run(path string) error {
	log := logflags.CmdLogger()
	var l models.Loader
	var err error
	if c.Options.Raw {
		l, err = loader.LoadRawFile(path, c.Config.Bits, c.Options.Base)
	} else {
		l, err = loader.LoadFile(path)
	}
	if err != nil {
		return err
	}
	defer l.Close()
	log.Debugf("%s: %s %s, %d segments, %d sections, %d functions",
		path, l.Format(), l.Arch(), len(l.Segments()), len(l.Sections()), len(l.Functions()))
	if c.Config.Verbose {
		for _, w := range l.Warnings() {
			fmt.Fprintf(c.Err, "warning: %v\n", w)
		}
	}

	p := &printer{out: c.Out, cfg: c.Config, l: l, demangle: c.Options.Demangle}
	o := c.Options
	if !o.any() {
		o.Header = true
	}
	if o.All {
		o.Header, o.Program, o.Section = true, true, true
	}
	steps := []struct {
		on bool
		fn func() error
	}{
		{o.Header, p.header},
		{o.Program, p.segments},
		{o.Section, p.sections},
		{o.Dump, p.disassemble},
		{o.Funcs, func() error { return p.functions(o.Prefix) }},
		{o.Analyze, p.analyze},
		{o.HexDump, p.hexdump},
		{o.Diff != "", func() error { return p.diff(o.Diff) }},
		{o.Histogram, p.histogram},
	}
	for _, s := range steps {
		if !s.on {
			continue
		}
		if err := s.fn(); err != nil {
			return err
		}
	}
	return nil
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints err and, when it carries one, a stack trace.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w, "Error: %s\n", err)
	st, ok := err.(stackTracer)
	if !ok {
		return
	}
	// parse full path and method name for each stack frame
	var frames [][]string
	for _, f := range st.StackTrace() {
		fullpath := ""
		fileline := fmt.Sprintf("%s:%d", f, f)
		method := fmt.Sprintf("%n", f)

		frame := fmt.Sprintf("%+s", f)
		tmp := strings.SplitN(frame, "\n", 3)
		if len(tmp) == 2 {
			pathsplit := strings.Split(tmp[0], "/")
			method = pathsplit[len(pathsplit)-1]
			fullpath = strings.TrimSpace(tmp[1])
		}
		frames = append(frames, []string{fullpath, fileline, method})
		if method == "main.main" {
			break
		}
	}
	widths := make([]int, 3)
	for _, f := range frames {
		for i, s := range f {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}
	for _, f := range frames {
		for i := 0; i < 2; i++ {
			if widths[i] > 0 {
				pad := strings.Repeat(" ", widths[i]-len(f[i]))
				fmt.Fprintf(w, "%s%s | ", f[i], pad)
			}
		}
		fmt.Fprintf(w, "%s()\n", f[2])
	}
}

// Main runs the command line and exits with a status.
func Main(args []string) int {
	c := NewReadbinCmd(nil, os.Stderr)
	root := c.Command()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		PrintError(os.Stderr, err)
		return 1
	}
	return 0
}
