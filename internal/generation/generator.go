package generation

import (
	"bytes"
	"context"

	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/go-version"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"gir2go/internal"
	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

var log = commonlog.GetLogger("gir2go.generation")

// Options controls the shape of the generated package.
type Options struct {
	PackageName string
	// Denylist holds native names that are never generated.
	Denylist []string
	// Verbatim holds constants emitted with their literal value and type.
	Verbatim []string
	// Imports maps foreign namespaces to the import path of their bindings.
	Imports       map[string]string
	TargetVersion *version.Version
	Workers       int
	PkgConfig     []string
	CIncludes     []string
}

type Generator struct {
	Options      Options
	Namespace    string
	Registry     *metadata.Registry
	Records      []*metadata.Record
	Functions    []*metadata.Function
	Enumerations []*metadata.Enumeration
	Constants    []*metadata.Constant
	Aliases      []*metadata.Alias
	Callbacks    []*metadata.Callback
}

func NewGenerator(registry *metadata.Registry, namespace string, options Options) *Generator {
	return &Generator{
		Options:   options,
		Namespace: namespace,
		Registry:  registry,
	}
}

func (generator *Generator) RegisterRecord(element *metadata.Record) {
	generator.Records = append(generator.Records, element)
}

func (generator *Generator) RegisterFunction(element *metadata.Function) {
	generator.Functions = append(generator.Functions, element)
}

// RegisterLeaves registers the enumerations, constants, aliases and callbacks
// of repository.
func (generator *Generator) RegisterLeaves(repository *metadata.Repository) {
	for i := range repository.Enumerations {
		generator.Enumerations = append(generator.Enumerations, &repository.Enumerations[i])
	}
	for i := range repository.Constants {
		generator.Constants = append(generator.Constants, &repository.Constants[i])
	}
	for i := range repository.Aliases {
		generator.Aliases = append(generator.Aliases, &repository.Aliases[i])
	}
	for i := range repository.Callbacks {
		generator.Callbacks = append(generator.Callbacks, &repository.Callbacks[i])
	}
}

// RegisterRepository registers every entity of repository.
func (generator *Generator) RegisterRepository(repository *metadata.Repository) {
	for i := range repository.Records {
		generator.RegisterRecord(&repository.Records[i])
	}
	for i := range repository.Functions {
		generator.RegisterFunction(&repository.Functions[i])
	}
	generator.RegisterLeaves(repository)
}

// emitter is the state shared by all files of one run. Everything but
// packageNames is read-only; packageNames is only written while planning,
// before any file is rendered.
type emitter struct {
	options    Options
	namespace  string
	registry   *metadata.Registry
	namer      *Namer
	mapper     *TypeMapper
	classifier *Classifier
	hierarchy  *Hierarchy
	generated  map[string]bool
	functions  []*metadata.Function
	verbatim   map[string]bool

	packageNames map[string]bool
}

func (generator *Generator) newEmitter() *emitter {
	generated := make(map[string]bool, len(generator.Records))
	for _, r := range generator.Records {
		if r.Namespace == "" {
			r.Namespace = generator.Namespace
		}
		generated[r.QualifiedName()] = true
	}
	verbatim := make(map[string]bool, len(generator.Options.Verbatim))
	for _, name := range generator.Options.Verbatim {
		verbatim[name] = true
	}

	namer := NewNamer(generator.Registry)
	hierarchy := NewHierarchy(generator.Registry, generator.Records)
	return &emitter{
		options:      generator.Options,
		namespace:    generator.Namespace,
		registry:     generator.Registry,
		namer:        namer,
		mapper:       NewTypeMapper(namer, generator.Registry, generator.Namespace, generator.Options.Imports, nil).Restrict(generated),
		classifier:   NewClassifier(namer, hierarchy, generator.Options.Denylist, generator.Options.TargetVersion),
		hierarchy:    hierarchy,
		generated:    generated,
		functions:    generator.Functions,
		verbatim:     verbatim,
		packageNames: make(map[string]bool),
	}
}

// task renders one file into its own slot.
type task struct {
	filename string
	diags    diagnostic.Diagnostics
	render   func(diags *diagnostic.Diagnostics) *jen.File
	content  []byte
}

// Generate renders all registered entities. Files are rendered in parallel
// and returned in a fixed order: records in registration order, then
// functions, enumerations, constants, aliases, callbacks and the
// boilerplate. A file that fails to render is left out and reported as an
// error diagnostic.
func (generator *Generator) Generate(ctx context.Context) ([]GeneratedFile, diagnostic.Diagnostics, error) {
	e := generator.newEmitter()

	var tasks []*task
	for _, plan := range e.planRecords(generator.Records) {
		plan := plan
		tasks = append(tasks, &task{
			filename: plan.fileName,
			diags:    plan.diags,
			render: func(diags *diagnostic.Diagnostics) *jen.File {
				return e.renderRecord(plan, diags)
			},
		})
	}

	if len(generator.Functions) > 0 {
		functions := &task{filename: functionsFile}
		plans := e.planFunctions(generator.Functions, &functions.diags)
		functions.render = func(diags *diagnostic.Diagnostics) *jen.File {
			return e.renderFunctions(plans, diags)
		}
		tasks = append(tasks, functions)
	}
	if len(generator.Enumerations) > 0 {
		tasks = append(tasks, &task{filename: enumerationsFile, render: func(diags *diagnostic.Diagnostics) *jen.File {
			return e.renderEnumerations(generator.Enumerations, diags)
		}})
	}
	if len(generator.Constants) > 0 {
		tasks = append(tasks, &task{filename: constantsFile, render: func(diags *diagnostic.Diagnostics) *jen.File {
			return e.renderConstants(generator.Constants, diags)
		}})
	}
	if len(generator.Aliases) > 0 {
		tasks = append(tasks, &task{filename: aliasesFile, render: func(diags *diagnostic.Diagnostics) *jen.File {
			return e.renderAliases(generator.Aliases, diags)
		}})
	}
	if len(generator.Callbacks) > 0 {
		tasks = append(tasks, &task{filename: callbacksFile, render: func(diags *diagnostic.Diagnostics) *jen.File {
			return e.renderCallbacks(generator.Callbacks, diags)
		}})
	}

	group, ctx := errgroup.WithContext(ctx)
	workers := generator.Options.Workers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)
	for _, t := range tasks {
		t := t
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := t.render(&t.diags).Render(&buf); err != nil {
				t.diags.AddError(diagnostic.CodeRenderFailed, err.Error(), t.filename, "")
				log.Errorf("rendering %s: %s", t.filename, err)
				return nil
			}
			t.content = buf.Bytes()
			return nil
		})
	}

	var diags diagnostic.Diagnostics
	if err := group.Wait(); err != nil {
		return nil, diags, err
	}

	files := make([]GeneratedFile, 0, len(tasks))
	for _, t := range tasks {
		diags.Merge(t.diags)
		if t.content != nil {
			files = append(files, GeneratedFile{Filename: t.filename, Content: t.content})
		}
	}

	// Rendering the boilerplate only fails on a generator bug.
	var boilerplate bytes.Buffer
	internal.PanicOnError(e.renderBoilerplate().Render(&boilerplate))
	files = append(files, GeneratedFile{Filename: boilerplateFile, Content: boilerplate.Bytes()})

	log.Infof("generated %d files (%d warnings, %d errors)", len(files), len(diags.Warnings), len(diags.Errors))
	return files, diags, nil
}
