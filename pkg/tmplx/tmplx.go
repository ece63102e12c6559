package tmplx

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

var (
	ErrRenderTemplate = errors.New("tmplx: render error")
	ErrParseTemplate  = errors.New("tmplx: parse error")
)

type executor interface {
	Execute(w io.Writer, data any) error
}

type Template struct {
	tmpl executor
}

type Options struct {
	validate ValidateFunc
	testData any
	funcs    template.FuncMap
	html     bool
}

type Option func(*Options) error

type ValidateFunc func(*bytes.Buffer) error

// defaultFuncs returns the default template functions
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"quote":          quoteFunc,
		"default":        defaultFunc,
		"json":           jsonFunc,
		"hasSuffix":      hasSuffix,
		"hasPrefix":      hasPrefix,
		"jsonGet":        jsonGet,
		"encodeUrlQuery": encodeUrlQuery,
		"year":           currentYear,
	}
}

// WithTemplateFunc adds a single custom template function
func WithTemplateFunc(name string, fn any) Option {
	return func(t *Options) error {
		t.funcs[name] = fn
		return nil
	}
}

// WithValidate adds validation using test data
func WithValidate(testData any, validateFn ValidateFunc) Option {
	return func(t *Options) error {
		t.validate = validateFn
		t.testData = testData
		return nil
	}
}

// WithHTML parses the text with html/template so interpolated values are
// escaped for the HTML context they land in.
func WithHTML() Option {
	return func(t *Options) error {
		t.html = true
		return nil
	}
}

func MustParse(name string, text string, opts ...Option) *Template {
	t, err := Parse(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse creates a new Template with the given name and text, applying any options
func Parse(name string, text string, args ...Option) (*Template, error) {
	opts := &Options{
		funcs: defaultFuncs(),
	}
	for _, arg := range args {
		if err := arg(opts); err != nil {
			return nil, err
		}
	}

	var (
		exec executor
		err  error
	)
	if opts.html {
		exec, err = htmltemplate.New(name).
			Option("missingkey=zero").
			Funcs(htmltemplate.FuncMap(opts.funcs)).
			Parse(text)
	} else {
		exec, err = template.New(name).
			Option("missingkey=zero").
			Funcs(opts.funcs).
			Parse(text)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}

	t := &Template{
		tmpl: exec,
	}
	if opts.validate != nil {
		if err := t.validate(opts.testData, opts.validate); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Template) validate(data any, validate ValidateFunc) error {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	if err := validate(buf); err != nil {
		return fmt.Errorf("validate template: %w", err)
	}
	return nil
}

func (t *Template) Render(data any) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderTemplate, err)
	}
	return buf, nil
}

// RenderString is Render for callers that only need the text.
func (t *Template) RenderString(data any) (string, error) {
	buf, err := t.Render(data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasSuffix(a, b any) bool {
	return strings.HasSuffix(cast.ToString(a), cast.ToString(b))
}

func hasPrefix(a, b any) bool {
	return strings.HasPrefix(cast.ToString(a), cast.ToString(b))
}

func quoteFunc(s string) (string, error) {
	return jsonFunc(s)
}

func defaultFunc(def any, value any) any {
	if value != nil && value != "" {
		return value
	}
	return def
}

func jsonFunc(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func jsonGet(path string, raw string) string {
	return gjson.Get(raw, path).String()
}

func encodeUrlQuery(queries ...any) string {
	query := url.Values{}
	for i := 0; i < len(queries); i += 2 {
		value := ""
		if i+1 < len(queries) {
			value = cast.ToString(queries[i+1])
		}
		query.Add(cast.ToString(queries[i]), value)
	}
	return query.Encode()
}

func currentYear() int {
	return time.Now().Year()
}
