// Command gir2go generates cgo bindings from GObject-Introspection files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"gir2go/internal"
	"gir2go/internal/config"
	"gir2go/internal/generation"
	"gir2go/internal/metadata"
)

var log = commonlog.GetLogger("gir2go")

// stringList collects a repeatable flag.
type stringList []string

func (list *stringList) String() string {
	return strings.Join(*list, ",")
}

func (list *stringList) Set(value string) error {
	*list = append(*list, value)
	return nil
}

func main() {
	var configPath = flag.String("config", "", "The path to a gir2go.toml or gir2go.yaml project file.")
	var girPath = flag.String("gir", "", "The path to the GIR file to generate bindings for.")
	var includeDirs stringList
	flag.Var(&includeDirs, "I", "A directory searched for included GIR files. May be repeated.")
	var inputFilePath = flag.String("input", "", "The path to the file listing the records and functions to generate. Default: everything")
	var denylistPath = flag.String("denylist", "", "The path to the file listing native names that must not be generated.")
	var packageName = flag.String("package", "", "The name of the package with generated code. Default: gir")
	var outputPath = flag.String("outputPath", "", "The path where all generated files will be placed. Default: ./output/")
	var forceClean = flag.Bool("forceCleanOutput", false, "If given forces cleaning output directory before generation.")
	var verbosity = flag.Int("v", 0, "Log verbosity, from 0 (errors and warnings) upwards.")
	flag.Usage = func() {
		fmt.Println("App that generates cgo bindings from GObject-Introspection metadata.")
		flag.PrintDefaults()
	}

	flag.Parse()
	commonlog.Configure(*verbosity, nil)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Critical(err.Error())
			os.Exit(1)
		}
	}

	// Flags override the project file.
	if *girPath != "" {
		cfg.Source.Gir = *girPath
	} else {
		cfg.Source.Gir = cfg.Resolve(cfg.Source.Gir)
	}
	for i, dir := range cfg.Source.IncludeDirs {
		cfg.Source.IncludeDirs[i] = cfg.Resolve(dir)
	}
	cfg.Source.IncludeDirs = append(cfg.Source.IncludeDirs, includeDirs...)
	if *inputFilePath != "" {
		cfg.Source.Input = *inputFilePath
	} else {
		cfg.Source.Input = cfg.Resolve(cfg.Source.Input)
	}
	if *denylistPath != "" {
		cfg.Generation.DenylistFile = *denylistPath
	} else {
		cfg.Generation.DenylistFile = cfg.Resolve(cfg.Generation.DenylistFile)
	}
	if *packageName != "" {
		cfg.Package.Name = *packageName
	}
	if *outputPath != "" {
		cfg.Package.Output = *outputPath
	} else {
		cfg.Package.Output = cfg.Resolve(cfg.Package.Output)
	}

	if err := run(cfg, *forceClean); err != nil {
		log.Critical(err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, forceClean bool) error {
	if cfg.Source.Gir == "" {
		return errors.New("GIR file path is missing")
	}
	if _, err := os.Stat(cfg.Source.Gir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("GIR file %s does not exist", cfg.Source.Gir)
	}

	reader, err := metadata.NewReader(cfg.Source.Gir, metadata.NewLocator(cfg.Source.IncludeDirs...))
	if err != nil {
		return err
	}
	primary := reader.Primary()
	registry := metadata.NewRegistry(reader.Repositories...)

	denylist := append([]string(nil), cfg.Generation.Denylist...)
	if cfg.Generation.DenylistFile != "" {
		lines, err := internal.ReadLines(cfg.Generation.DenylistFile)
		if err != nil {
			return err
		}
		denylist = append(denylist, lines...)
	}

	pkgConfig := cfg.Cgo.PkgConfig
	if len(pkgConfig) == 0 {
		pkgConfig = primary.Packages
	}
	cIncludes := cfg.Cgo.Includes
	if len(cIncludes) == 0 {
		cIncludes = primary.CIncludes
	}

	generator := generation.NewGenerator(registry, primary.Namespace, generation.Options{
		PackageName:   cfg.Package.Name,
		Denylist:      denylist,
		Verbatim:      cfg.Generation.Verbatim,
		Imports:       cfg.Imports,
		TargetVersion: cfg.TargetVersion(),
		Workers:       cfg.Generation.Workers,
		PkgConfig:     pkgConfig,
		CIncludes:     cIncludes,
	})
	if err := register(generator, reader, cfg.Source.Input); err != nil {
		return err
	}

	files, diags, err := generator.Generate(context.Background())
	if err != nil {
		return err
	}
	for _, warning := range diags.Warnings {
		log.Notice(warning.String())
	}
	if err := diags.Error(); err != nil {
		return err
	}

	if err := ClearDirectoryIfNotEmpty(cfg.Package.Output, forceClean); err != nil {
		return err
	}
	return generation.WriteFiles(files, cfg.Package.Output)
}

// register adds the selected records and functions to the generator, or the
// whole primary repository without a selection.
func register(generator *generation.Generator, reader *metadata.GirReader, inputFilePath string) error {
	primary := reader.Primary()
	if inputFilePath == "" {
		generator.RegisterRepository(primary)
		return nil
	}
	generator.RegisterLeaves(primary)

	names, err := internal.ReadLines(inputFilePath)
	if err != nil {
		return err
	}
	for _, name := range names {
		if record, found := reader.TryGetRecord(name); found {
			generator.RegisterRecord(record)
			continue
		}
		if function, found := reader.TryGetFunction(name); found {
			generator.RegisterFunction(function)
			continue
		}
		log.Warningf("%s is neither a record nor a function of %s", name, primary.Namespace)
	}
	return nil
}

// ClearDirectoryIfNotEmpty removes a non-empty output directory after asking
// for confirmation, unless silent is set.
func ClearDirectoryIfNotEmpty(path string, silent bool) error {
	empty, err := generation.IsDirectoryEmpty(path)
	if err != nil || empty {
		return err
	}

	var response string
	if !silent {
		fmt.Print("Output directory is not empty. Continuation will result in removing all output file. Proceed? [Y/n]")
		fmt.Scan(&response)
		if strings.ToUpper(response) != "Y" {
			return errors.New("explicit agreement was not given")
		}
	}

	log.Info("cleaning output directory")
	return os.RemoveAll(path)
}
