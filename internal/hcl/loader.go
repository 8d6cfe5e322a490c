package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/bemgo/internal/config"
	"github.com/specialistvlad/bemgo/internal/ctxlog"
	"github.com/specialistvlad/bemgo/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL bundle loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges them into one bundle.
// Settings blocks in later files override earlier ones field by field;
// templates accumulate in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Bundle, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindAll(paths, ".hcl")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover HCL files: %w", err)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	bundle := &config.Bundle{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.decodeInto(ctx, bundle, file, hclFile.Body); err != nil {
			return nil, nil, err
		}
		bundle.Files = append(bundle.Files, file)
	}

	logger.Debug("HCL loading complete.", "files", len(bundle.Files), "templates", len(bundle.Templates))
	return bundle, NewConverter(), nil
}

// LoadSource decodes a single in-memory bundle file.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.Bundle, config.Converter, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	bundle := &config.Bundle{}
	if err := l.decodeInto(ctx, bundle, filename, hclFile.Body); err != nil {
		return nil, nil, err
	}
	bundle.Files = append(bundle.Files, filename)
	return bundle, NewConverter(), nil
}

func (l *Loader) decodeInto(ctx context.Context, bundle *config.Bundle, file string, body hcl.Body) error {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	for _, m := range root.Modules {
		mergeModules(&bundle.Modules, m)
	}
	for _, b := range root.BH {
		mergeBH(&bundle.BH, b)
	}
	for _, tb := range root.Templates {
		t, err := translateTemplate(tb, file)
		if err != nil {
			return err
		}
		logger.Debug("Translated template.", "template", t.Name, "matches", len(t.Matches), "file", file)
		bundle.Templates = append(bundle.Templates, t)
	}
	return nil
}

func mergeModules(dst *config.ModulesSettings, src *modulesBlock) {
	if src.TrackCircularDependencies != nil {
		dst.TrackCircularDependencies = src.TrackCircularDependencies
	}
	if src.AllowMultipleDeclarations != nil {
		dst.AllowMultipleDeclarations = src.AllowMultipleDeclarations
	}
}

func mergeBH(dst *config.BHSettings, src *bhBlock) {
	if src.JSAttrName != nil {
		dst.JSAttrName = src.JSAttrName
	}
	if src.JSAttrScheme != nil {
		dst.JSAttrScheme = src.JSAttrScheme
	}
	if src.EscapeContent != nil {
		dst.EscapeContent = src.EscapeContent
	}
	if src.InfiniteLoopDetection != nil {
		dst.InfiniteLoopDetection = src.InfiniteLoopDetection
	}
	if src.NodeLoopLimit != nil {
		dst.NodeLoopLimit = src.NodeLoopLimit
	}
	if src.GlobalLoopLimit != nil {
		dst.GlobalLoopLimit = src.GlobalLoopLimit
	}
}

// translateTemplate converts the HCL-specific template schema into the
// agnostic model.
func translateTemplate(tb *templateBlock, file string) (*config.Template, error) {
	t := &config.Template{
		Name:      tb.Name,
		DependsOn: tb.DependsOn,
		Source:    file,
	}
	for _, mb := range tb.Matches {
		attrs, diags := mb.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("template %q, match %q: %w", tb.Name, mb.Pattern, diags)
		}
		exprs := make(map[string]hcl.Expression, len(attrs))
		for name, attr := range attrs {
			if !matchAttributes[name] {
				return nil, fmt.Errorf("template %q, match %q: unsupported attribute %q at %s", tb.Name, mb.Pattern, name, attr.NameRange)
			}
			exprs[name] = attr.Expr
		}
		t.Matches = append(t.Matches, &config.Match{
			Pattern:    mb.Pattern,
			Attributes: exprs,
			DeclRange:  mb.Body.MissingItemRange(),
		})
	}
	return t, nil
}
