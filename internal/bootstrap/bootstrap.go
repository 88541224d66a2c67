// Package bootstrap compiles a schema model into an executable schema: the
// named type graph, the data fetchers bound to every field coordinate, the
// interface type resolvers and the batch loaders that requests instantiate.
//
// Compilation runs once, synchronously, before any request is served. The
// returned Result is read-only and safe for concurrent use.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	classes "github.com/hanpama/gqlboot/internal/classes"
	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
	errinfo "github.com/hanpama/gqlboot/internal/errinfo"
	eventbus "github.com/hanpama/gqlboot/internal/eventbus"
	events "github.com/hanpama/gqlboot/internal/events"
	literal "github.com/hanpama/gqlboot/internal/literal"
	model "github.com/hanpama/gqlboot/internal/model"
	resolver "github.com/hanpama/gqlboot/internal/resolver"
	runtime "github.com/hanpama/gqlboot/internal/runtime"
	schema "github.com/hanpama/gqlboot/internal/schema"
	visibility "github.com/hanpama/gqlboot/internal/visibility"
)

const (
	queryRoot           = "Query"
	queryDescription    = "Query root"
	mutationRoot        = "Mutation"
	mutationDescription = "Mutation root"
)

// Config exposes the settings the compiler reads.
type Config interface {
	FieldVisibility() string
}

// Extension may modify the schema builder right before the schema is built.
// The returned builder is the one that gets built.
type Extension func(*schema.Builder) *schema.Builder

// OperationHook may rewrite an operation before it is wired.
type OperationHook func(model.Operation) model.Operation

type options struct {
	ctx           context.Context
	config        Config
	logger        *zap.Logger
	classes       classes.Loader
	decoder       literal.Decoder
	methods       *datafetcher.Methods
	extension     Extension
	operationHook OperationHook
}

type Option func(*options)

// WithContext sets the context bootstrap events are published with.
func WithContext(ctx context.Context) Option { return func(o *options) { o.ctx = ctx } }

func WithConfig(c Config) Option { return func(o *options) { o.config = c } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithClasses sets the class loader used for default value coercion.
func WithClasses(l classes.Loader) Option { return func(o *options) { o.classes = l } }

// WithDecoder sets the structured literal decoder used for default values.
func WithDecoder(d literal.Decoder) Option { return func(o *options) { o.decoder = d } }

// WithMethods sets the business methods operations are bound to.
func WithMethods(m *datafetcher.Methods) Option { return func(o *options) { o.methods = m } }

func WithExtension(e Extension) Option { return func(o *options) { o.extension = e } }

func WithOperationHook(h OperationHook) Option { return func(o *options) { o.operationHook = h } }

// Result is the compiled artifact. An empty Result has no Schema.
type Result struct {
	Schema     *schema.Schema
	Runtime    *runtime.Runtime
	Loaders    *dataloader.Registry
	Visibility *visibility.Policy
	Errors     *errinfo.Map
}

// Empty reports whether the model had nothing to compile.
func (r *Result) Empty() bool { return r == nil || r.Schema == nil }

// RegisterDataLoader adds a user batch loader next to the compiled ones.
// It reports false when the name is already taken.
func (r *Result) RegisterDataLoader(name string, fn dataloader.BatchFunc) bool {
	if r.Loaders == nil {
		r.Loaders = dataloader.NewRegistry()
	}
	return r.Loaders.Register(name, fn)
}

// Bootstrap compiles m. A nil model or one without operations is not an
// error; the Result is empty instead.
func Bootstrap(m *model.Schema, opts ...Option) (*Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.classes == nil {
		o.classes = classes.NewRegistry()
	}
	if o.decoder == nil {
		o.decoder = literal.NewJSON()
	}
	if o.methods == nil {
		o.methods = datafetcher.NewMethods()
	}

	start := time.Now()
	policy := visibility.Default()
	if o.config != nil {
		policy = visibility.Parse(o.config.FieldVisibility(), o.logger)
	}

	if m == nil || !m.HasOperations() {
		o.logger.Info("empty or null schema model")
		eventbus.Publish(o.ctx, events.BootstrapFinish{Empty: true, Duration: time.Since(start)})
		return &Result{Loaders: dataloader.NewRegistry(), Visibility: policy, Errors: errinfo.NewMap()}, nil
	}

	eventbus.Publish(o.ctx, events.BootstrapStart{
		Types:      len(m.Types) + len(m.Interfaces) + len(m.Inputs) + len(m.Enums),
		Operations: countOperations(m),
	})

	c := newCompiler(m, o)
	s, err := c.compile()
	eventbus.Publish(o.ctx, events.BootstrapFinish{
		Types:    c.typeCount(),
		Fields:   c.fields,
		Loaders:  len(c.loaders.Names()),
		Warnings: c.warnings,
		Err:      err,
		Duration: time.Since(start),
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return &Result{
		Schema:     s,
		Runtime:    runtime.New(c.registry, c.loaders, c.errors),
		Loaders:    c.loaders,
		Visibility: policy,
		Errors:     c.errors,
	}, nil
}

func countOperations(m *model.Schema) int {
	n := len(m.Queries) + len(m.Mutations)
	for _, g := range m.GroupedQueries {
		n += len(g.Operations)
	}
	for _, g := range m.GroupedMutations {
		n += len(g.Operations)
	}
	for _, t := range m.Types {
		n += len(t.Operations) + len(t.BatchOperations)
	}
	return n
}

// compiler holds the state of one compilation. Enums are keyed by class
// name because default value coercion looks them up by class; the other
// named types are keyed by GraphQL name.
type compiler struct {
	model  *model.Schema
	opts   options
	logger *zap.Logger

	enums      map[string]*schema.Type
	interfaces map[string]*schema.Type
	types      map[string]*schema.Type
	inputs     map[string]*schema.Type
	scalars    map[string]*schema.Type
	groups     []*schema.Type
	roots      int

	registry *runtime.Registry
	loaders  *dataloader.Registry
	outputs  *resolver.OutputRegistry
	errors   *errinfo.Map

	fields   int
	warnings int
}

func newCompiler(m *model.Schema, o options) *compiler {
	return &compiler{
		model:      m,
		opts:       o,
		logger:     o.logger,
		enums:      make(map[string]*schema.Type),
		interfaces: make(map[string]*schema.Type),
		types:      make(map[string]*schema.Type),
		inputs:     make(map[string]*schema.Type),
		scalars:    make(map[string]*schema.Type),
		registry:   runtime.NewRegistry(),
		loaders:    dataloader.NewRegistry(),
		outputs:    resolver.NewOutputRegistry(),
		errors:     errinfo.NewMap(),
	}
}

func (c *compiler) compile() (*schema.Schema, error) {
	c.createEnumTypes()
	c.createInterfaceTypes()
	c.createObjectTypes()
	c.createInputTypes()

	b := schema.NewBuilder()
	c.addQueries(b)
	c.addMutations(b)

	for _, e := range c.model.SortedEnums() {
		b.AdditionalType(c.enums[enumKey(e)])
	}
	for _, i := range c.model.SortedInterfaces() {
		b.AdditionalType(c.interfaces[i.Name])
	}
	for _, t := range c.model.SortedTypes() {
		b.AdditionalType(c.types[t.Name])
	}
	for _, in := range c.model.SortedInputs() {
		b.AdditionalType(c.inputs[in.Name])
	}
	b.AdditionalTypes(c.groups...)
	for _, name := range sortedKeys(c.scalars) {
		b.AdditionalType(c.scalars[name])
	}

	c.errors.Register(c.model.Errors)

	if c.opts.extension != nil {
		if next := c.opts.extension(b); next != nil {
			b = next
		}
	}
	return b.Build()
}

func (c *compiler) warn(msg string, fields ...zap.Field) {
	c.warnings++
	c.logger.Warn(msg, fields...)
}

func (c *compiler) typeCount() int {
	return len(c.enums) + len(c.interfaces) + len(c.types) + len(c.inputs) + len(c.groups) + c.roots
}

func (c *compiler) operation(op model.Operation) model.Operation {
	if c.opts.operationHook != nil {
		return c.opts.operationHook(op)
	}
	return op
}
