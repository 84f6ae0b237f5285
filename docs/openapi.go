package docs

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

type Document struct {
	OpenAPI    string                          `json:"openapi" yaml:"openapi"`
	Info       Info                            `json:"info" yaml:"info"`
	Servers    []Server                        `json:"servers,omitempty" yaml:"servers,omitempty"`
	Tags       []Tag                           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Paths      map[string]map[string]Operation `json:"paths" yaml:"paths"`
	Components Components                      `json:"components" yaml:"components"`
}

type Info struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

type Server struct {
	URL string `json:"url" yaml:"url"`
}

type Tag struct {
	Name string `json:"name" yaml:"name"`
}

type Operation struct {
	Tags        []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary     string                `json:"summary" yaml:"summary"`
	OperationID string                `json:"operationId" yaml:"operationId"`
	Parameters  []Parameter           `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response   `json:"responses" yaml:"responses"`
	Security    []map[string][]string `json:"security,omitempty" yaml:"security,omitempty"`
}

type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required" yaml:"required"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

type Schema struct {
	Type string `json:"type" yaml:"type"`
}

type Response struct {
	Description string `json:"description" yaml:"description"`
}

type Components struct {
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type" yaml:"type"`
	Scheme       string `json:"scheme" yaml:"scheme"`
	BearerFormat string `json:"bearerFormat" yaml:"bearerFormat"`
}

type Options struct {
	Title   string
	Version string
	// Prefix is stripped before picking the tag, e.g. "/api/v1".
	Prefix string
	// Public lists gin paths that do not require a token.
	Public []string
}

const bearerScheme = "bearerAuth"

// Build describes every registered route, skipping the docs routes.
func Build(routes []gin.RouteInfo, o Options) Document {
	public := make(map[string]bool, len(o.Public))
	for _, p := range o.Public {
		public[p] = true
	}

	doc := Document{
		OpenAPI: "3.0.3",
		Info:    Info{Title: o.Title, Version: o.Version},
		Paths:   make(map[string]map[string]Operation),
		Components: Components{SecuritySchemes: map[string]SecurityScheme{
			bearerScheme: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		}},
	}

	tags := make(map[string]bool)
	for _, rt := range routes {
		if rt.Path == "/docs" || strings.HasPrefix(rt.Path, "/docs/") {
			continue
		}
		path, params := convertPath(rt.Path)
		tag := tagFor(rt.Path, o.Prefix)

		op := Operation{
			Summary:     rt.Method + " " + path,
			OperationID: operationID(rt.Method, rt.Path),
			Parameters:  params,
			Responses: map[string]Response{
				"200": {Description: "Success envelope"},
				"400": {Description: "Validation error"},
				"500": {Description: "Internal Server Error"},
			},
		}
		if tag != "" {
			op.Tags = []string{tag}
			tags[tag] = true
		}
		if !public[rt.Path] {
			op.Security = []map[string][]string{{bearerScheme: {}}}
			op.Responses["401"] = Response{Description: "Unauthorized request"}
		}

		if doc.Paths[path] == nil {
			doc.Paths[path] = make(map[string]Operation)
		}
		doc.Paths[path][strings.ToLower(rt.Method)] = op
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Tags = append(doc.Tags, Tag{Name: name})
	}
	return doc
}

// convertPath turns /videos/:id into /videos/{id}.
func convertPath(path string) (string, []Parameter) {
	segments := strings.Split(path, "/")
	var params []Parameter
	for i, seg := range segments {
		if len(seg) > 1 && (seg[0] == ':' || seg[0] == '*') {
			name := seg[1:]
			segments[i] = "{" + name + "}"
			params = append(params, Parameter{Name: name, In: "path", Required: true, Schema: Schema{Type: "string"}})
		}
	}
	return strings.Join(segments, "/"), params
}

func tagFor(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" && seg[0] != ':' {
			return seg
		}
	}
	return ""
}

func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimLeft(seg, ":*")
		for _, part := range strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' }) {
			b.WriteString(strings.ToUpper(part[:1]) + part[1:])
		}
	}
	return b.String()
}
