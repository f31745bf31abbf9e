/*
Command mdcli converts markdown-flavoured text to styled output.

Without -file, mdcli starts an interactive session: every line typed is
parsed and printed. Lines starting with ':' are commands, see :help.

	mdcli -file notes.md -format html
	mdcli -theme dark.yaml -schemes http,https,file

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/npillmayer/mdstyle/backend/console"
	"github.com/npillmayer/mdstyle/backend/html"
	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/locate/resources"
	"github.com/npillmayer/mdstyle/engine/styled"
	"github.com/npillmayer/mdstyle/input/markdown"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'mdstyle.cli'
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.cli")
}

var traceKeys = []string{"cli", "markdown", "rules", "richtext", "resources", "backend"}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	format := flag.String("format", "console", "Output format [console|html]")
	themefile := flag.String("theme", "", "YAML file with a console theme")
	schemes := flag.String("schemes", strings.Join(markdown.DefaultSchemes, ","), "Comma separated URL schemes for links and images")
	filename := flag.String("file", "", "Markdown file to convert, '-' for stdin")
	wait := flag.Duration("wait", 10*time.Second, "Maximum time to wait for images")
	basedir := flag.String("base", "", "Base directory for relative image locators")
	diskcache := flag.Bool("cache", false, "Keep downloaded images in the user's cache directory")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace.mdstyle."+key] = *tlevel
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Infof("Trace level is %s", *tlevel)

	intp, err := newIntp(*format, *themefile, *schemes, *basedir, *diskcache, *wait)
	if err != nil {
		core.UserError(os.Stderr, err)
		os.Exit(2)
	}
	if *filename != "" {
		if err := intp.convertFile(*filename); err != nil {
			core.UserError(os.Stderr, err)
			os.Exit(3)
		}
		return
	}
	//
	// set up REPL
	repl, err := readline.New("md > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	intp.repl = repl
	pterm.Info.Println("Welcome to mdstyle")                   // colored welcome message
	pterm.Info.Println("Quit with <ctrl>D or :quit, see :help") // inform user how to stop the CLI
	intp.REPL()                                                 // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl   *readline.Instance
	rules  *markdown.RuleSet
	styles *markdown.StyleConfig
	theme  *console.Theme
	format string
	wait   time.Duration
	out    io.Writer
}

func newIntp(format, themefile, schemes, basedir string, diskcache bool, wait time.Duration) (*Intp, error) {
	intp := &Intp{
		format: format,
		wait:   wait,
		out:    os.Stdout,
		theme:  console.DefaultTheme(),
	}
	if format != "console" && format != "html" {
		return nil, core.Error(core.EINVALID, "unknown output format %q", format)
	}
	if themefile != "" {
		f, err := os.Open(themefile)
		if err != nil {
			return nil, core.WrapError(err, core.EMISSING, "cannot open theme %s", themefile)
		}
		defer f.Close()
		if intp.theme, err = console.ReadTheme(f); err != nil {
			return nil, err
		}
	}
	conf := markdown.DefaultConfig()
	conf.Schemes = strings.Split(schemes, ",")
	intp.rules = markdown.NewRuleSet(conf)
	if !intp.rules.Has("link") {
		pterm.Warning.Printfln("links and images are disabled, check schemes %q", schemes)
	}
	loader, err := resources.NewImageLoader(resources.Options{
		BaseDir:   basedir,
		DiskCache: diskcache,
	})
	if err != nil {
		return nil, err
	}
	intp.styles = markdown.DefaultStyles()
	intp.styles.Resolver = loader
	return intp, nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := intp.execute(strings.TrimSpace(line[1:])); quit {
				break
			}
			continue
		}
		if err := intp.convert(line); err != nil {
			pterm.Error.Println(core.UserMessage(err))
		}
	}
	pterm.Info.Println("Good bye!")
}

// execute runs a command and returns true if the session should end.
func (intp *Intp) execute(cmd string) bool {
	tracer().Debugf("command = %q", cmd)
	switch strings.ToLower(cmd) {
	case "quit", "q":
		return true
	case "html":
		intp.format = "html"
		pterm.Info.Println("output format is HTML")
	case "console":
		intp.format = "console"
		pterm.Info.Println("output format is console")
	default:
		help()
	}
	return false
}

func (intp *Intp) convertFile(filename string) error {
	var r io.Reader = os.Stdin
	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return core.WrapError(err, core.EMISSING, "cannot open %s", filename)
		}
		defer f.Close()
		r = f
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot read %s", filename)
	}
	return intp.convert(string(text))
}

// convert parses text, waits for its images and prints it in the current
// output format.
func (intp *Intp) convert(text string) error {
	doc := markdown.Parse(text, intp.rules, intp.styles)
	ctx, cancel := context.WithTimeout(context.Background(), intp.wait)
	defer cancel()
	if err := doc.Wait(ctx); err != nil {
		pterm.Warning.Printfln("%d images still loading", doc.Outstanding())
	}
	para, err := styled.ParagraphFromBuffer(doc.Buffer)
	if err != nil {
		return err
	}
	switch intp.format {
	case "html":
		err = html.Render(intp.out, para)
	default:
		err = console.Print(intp.out, para, intp.theme)
	}
	fmt.Fprintln(intp.out)
	return err
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	:html      print HTML fragments
	:console   print styled text (default)
	:quit      end the session

	Every other line is converted as markdown:

	**bold**  __italic__  ~~strike~~  ` + "`code`" + `
	# header   * list   1. ordered list   > quote
	[text](https://…)   ![alt](https://…)
	`)
}
