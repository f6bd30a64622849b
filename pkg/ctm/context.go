package ctm

// Options configures a Context at creation. There is no package level state;
// each Context carries its own copy.
type Options struct {
	// MaxMaps bounds the number of UV maps and, separately, attribute maps.
	// Legacy readers support at most 8 per category.
	MaxMaps int

	// MaxElements bounds the vertex and triangle counts accepted from a
	// stream before any allocation happens.
	MaxElements int
}

// DefaultOptions returns the options used when New is called without any.
func DefaultOptions() Options {
	return Options{
		MaxMaps:     8,
		MaxElements: 1 << 24,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithMaxMaps overrides the per-category map slot limit.
func WithMaxMaps(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxMaps = n
		}
	}
}

// WithMaxElements overrides the decode allocation bound.
func WithMaxElements(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxElements = n
		}
	}
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		if opts.MaxMaps > 0 {
			o.MaxMaps = opts.MaxMaps
		}
		if opts.MaxElements > 0 {
			o.MaxElements = opts.MaxElements
		}
	}
}

// Context owns all state for one mesh operation.
//
// A Context is not safe for concurrent use. Distinct contexts share nothing
// and may be used from different goroutines.
type Context struct {
	mode  Mode
	opts  Options
	freed bool
	err   ErrorCode

	method          Method
	level           int
	vertexPrecision float32
	normalPrecision float32
	comment         string

	mesh *mesh
}

type mesh struct {
	vertices []float32
	indices  []uint32
	normals  []float32

	uvMaps     []*floatMap
	attribMaps []*floatMap
}

type floatMap struct {
	name      string
	fileName  string
	precision float32
	values    []float32
}

func (m *mesh) vertexCount() int   { return len(m.vertices) / 3 }
func (m *mesh) triangleCount() int { return len(m.indices) / 3 }

// New creates a context for the given mode. A context created with an
// invalid mode fails every operation with InvalidContext.
func New(mode Mode, opts ...Option) *Context {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Context{
		mode:            mode,
		opts:            o,
		method:          DefaultMethod,
		level:           DefaultCompressionLevel,
		vertexPrecision: DefaultVertexPrecision,
		normalPrecision: DefaultNormalPrecision,
	}
}

// Free releases the mesh and invalidates the context. It is safe to call
// more than once.
func (c *Context) Free() {
	if c == nil {
		return
	}
	c.mesh = nil
	c.comment = ""
	c.freed = true
}

// Mode reports the direction the context was created for.
func (c *Context) Mode() Mode {
	if c == nil {
		return 0
	}
	return c.mode
}

// Err returns the sticky error without clearing it.
func (c *Context) Err() ErrorCode {
	if c == nil || c.freed || !c.mode.valid() {
		return InvalidContext
	}
	return c.err
}

// begin starts a mutating operation: it validates the handle, clears the
// sticky error and enforces the required mode (0 accepts either).
func (c *Context) begin(op string, want Mode) error {
	if c == nil || c.freed || !c.mode.valid() {
		return &Error{Op: op, Code: InvalidContext, Err: ErrContextFreed}
	}
	c.err = NoError
	if want != 0 && c.mode != want {
		return c.fail(op, InvalidOperation, ErrWrongMode)
	}
	return nil
}

// fail records code as the sticky error and returns it wrapped.
func (c *Context) fail(op string, code ErrorCode, cause error) error {
	c.err = code
	return &Error{Op: op, Code: code, Err: cause}
}

// failCoded unpacks an encoder/decoder error into the sticky state.
func (c *Context) failCoded(op string, err error, fallback ErrorCode) error {
	code, cause := splitCoded(err, fallback)
	return c.fail(op, code, cause)
}

// view checks that a read-only query can run. It never touches the sticky error.
func (c *Context) view(op string) (*mesh, error) {
	if c == nil || c.freed || !c.mode.valid() {
		return nil, &Error{Op: op, Code: InvalidContext, Err: ErrContextFreed}
	}
	if c.mesh == nil {
		return nil, &Error{Op: op, Code: InvalidMesh, Err: ErrNoMesh}
	}
	return c.mesh, nil
}
