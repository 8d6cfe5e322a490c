package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// bundle file. Anything else is a decode error.
type fileRoot struct {
	Modules   []*modulesBlock  `hcl:"modules,block"`
	BH        []*bhBlock       `hcl:"bh,block"`
	Templates []*templateBlock `hcl:"template,block"`
}

type modulesBlock struct {
	TrackCircularDependencies *bool `hcl:"track_circular_dependencies,optional"`
	AllowMultipleDeclarations *bool `hcl:"allow_multiple_declarations,optional"`
}

type bhBlock struct {
	JSAttrName            *string `hcl:"js_attr_name,optional"`
	JSAttrScheme          *string `hcl:"js_attr_scheme,optional"`
	EscapeContent         *bool   `hcl:"escape_content,optional"`
	InfiniteLoopDetection *bool   `hcl:"infinite_loop_detection,optional"`
	NodeLoopLimit         *int    `hcl:"node_loop_limit,optional"`
	GlobalLoopLimit       *int    `hcl:"global_loop_limit,optional"`
}

type templateBlock struct {
	Name      string        `hcl:"name,label"`
	DependsOn []string      `hcl:"depends_on,optional"`
	Matches   []*matchBlock `hcl:"match,block"`
}

type matchBlock struct {
	Pattern string   `hcl:"pattern,label"`
	Body    hcl.Body `hcl:",remain"`
}

// matchAttributes lists every attribute a match block accepts.
var matchAttributes = map[string]bool{
	"when":    true,
	"tag":     true,
	"cls":     true,
	"attrs":   true,
	"mods":    true,
	"js":      true,
	"bem":     true,
	"mix":     true,
	"content": true,
	"html":    true,
	"params":  true,
	"tparams": true,
	"force":   true,
	"stop":    true,
	"replace": true,
}
