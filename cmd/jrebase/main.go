package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/daimatz/jrebase/pkg/bytecode"
	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/config"
	"github.com/daimatz/jrebase/pkg/description"
	"github.com/daimatz/jrebase/pkg/loader"
	"github.com/daimatz/jrebase/pkg/lookup"
	"github.com/daimatz/jrebase/pkg/rebase"
	"github.com/daimatz/jrebase/pkg/source"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func main() {
	fs := flag.NewFlagSet("jrebase", flag.ExitOnError)
	verbose := fs.Bool("v", false, "log resolution decisions")
	configPath := fs.String("config", "", "path to jrebase.toml (default: searched upwards from the working directory)")
	jmodPath := fs.String("jmod", "", "path to java.base.jmod (default: JAVA_BASE_JMOD, JAVA_HOME or /usr/lib/jvm)")
	classPath := fs.String("cp", "", "directory of compiled classes referenced by the inputs")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: jrebase [flags] <file.class|File.java>...\n")
		fs.PrintDefaults()
		os.Exit(1)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pool := description.NewTypePool(classLoader(*jmodPath, *classPath))
	resolver := cfg.Resolver()
	engine := lookup.NewEngine()
	ctx := context.Background()

	status := 0
	for _, path := range fs.Args() {
		types, err := describe(ctx, path, pool)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = 1
			continue
		}
		for _, t := range types {
			printPlan(os.Stdout, engine.Process(t), rebase.Plan(resolver, t.DeclaredMethods()))
		}
	}
	os.Exit(status)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}

// classLoader chains the JDK module, when one is found, and the class path.
func classLoader(jmodPath, classPath string) loader.ClassLoader {
	if jmodPath == "" {
		jmodPath = loader.FindJmod()
	}
	var cl loader.ClassLoader
	if jmodPath != "" {
		cl = loader.NewJmodClassLoader(jmodPath)
	} else {
		log.Warn("Could not find java.base.jmod, JDK types are described as placeholders")
	}
	if classPath != "" {
		cl = loader.NewDirClassLoader(classPath, cl)
	}
	return cl
}

// describe returns the types declared by a class file or a Java source file.
func describe(ctx context.Context, path string, pool *description.TypePool) ([]description.Type, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".class":
		cf, err := classfile.ParseFile(path)
		if err != nil {
			return nil, err
		}
		t, err := pool.DescribeClassFile(cf)
		if err != nil {
			return nil, err
		}
		return []description.Type{t}, nil
	case ".java":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		latent, err := source.Parse(ctx, path, src, pool)
		if err != nil {
			return nil, err
		}
		types := make([]description.Type, len(latent))
		for i, t := range latent {
			types[i] = t
		}
		return types, nil
	default:
		return nil, fmt.Errorf("%s: expected a .class or .java file", path)
	}
}

// printPlan writes one line per declared method, followed for rebased
// methods by the instructions that delegate to the rebased copy.
func printPlan(w io.Writer, finding lookup.Finding, plan []rebase.Resolution) {
	t := finding.Type
	fmt.Fprintf(w, "%s (%d invokable methods)\n", t.Name(), len(finding.InvokableMethods))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, m := range t.DeclaredMethods() {
		resolution := plan[i]
		if !resolution.IsRebased() {
			fmt.Fprintf(tw, "  %s\t(unchanged)\n", m.UniqueSignature())
			continue
		}
		resolved := resolution.ResolvedMethod()
		fmt.Fprintf(tw, "  %s\t-> %s\t0x%04X\n", m.UniqueSignature(), resolved.UniqueSignature(), uint16(resolved.Modifiers()))

		args, err := resolution.AdditionalArguments()
		if err != nil {
			continue
		}
		call := bytecode.Compound{
			bytecode.LoadThisReferenceAndArguments(m),
			args,
			bytecode.MethodInvocation(resolved),
			bytecode.MethodReturn(m.ReturnType()),
		}
		if !call.IsValid() {
			log.WithField("method", m.UniqueSignature()).Warn("Cannot delegate to rebased method")
			continue
		}
		rec := &bytecode.Recorder{}
		size := call.Apply(rec, bytecode.NewContext(t))
		for _, insn := range strings.Split(rec.String(), "\n") {
			if insn != "" {
				fmt.Fprintf(tw, "  \t  %s\t\n", insn)
			}
		}
		fmt.Fprintf(tw, "  \t  max stack %d\t\n", size.Maximal)
	}
	tw.Flush()

	names := maps.Keys(finding.DefaultMethods)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  default methods of %s: %s\n", name, strings.Join(finding.DefaultMethods[name].Signatures(), ", "))
	}
}
