package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/barsql/internal/queryspec"
)

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadQuerySpec reads one query spec from a YAML or CUE file, selected
// by extension. Loading only decodes; structural validation happens in
// the compiler so callers see every problem in one pass.
func LoadQuerySpec(path string) (queryspec.QuerySpec, error) {
	var spec queryspec.QuerySpec

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return spec, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "spec file not found"}
	}
	if err != nil {
		return spec, &LoadError{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("accessing spec file: %v", err)}
	}
	if info.IsDir() {
		return spec, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "spec path is a directory"}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: fmt.Sprintf("reading spec file: %v", err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &spec); err != nil {
			return spec, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: fmt.Sprintf("parsing YAML spec: %v", err)}
		}
	case ".cue":
		ctx := cuecontext.New()
		value := ctx.CompileBytes(raw, cue.Filename(path))
		if err := value.Err(); err != nil {
			return spec, &LoadError{Code: ErrCodeBuildFailed, Path: path, Message: fmt.Sprintf("building CUE value: %v", err)}
		}
		if err := value.Decode(&spec); err != nil {
			return spec, &LoadError{Code: ErrCodeBuildFailed, Path: path, Message: fmt.Sprintf("decoding CUE spec: %v", err)}
		}
	default:
		return spec, &LoadError{Code: ErrCodeBadFormat, Path: path, Message: fmt.Sprintf("unsupported spec format %q (want .yaml, .yml, or .cue)", filepath.Ext(path))}
	}

	return spec, nil
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // File read error
	ErrCodeBadFormat   = "E003" // Unsupported spec file format
	ErrCodeParseFailed = "E004" // YAML parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Session/holiday config error

	// Spec validation errors
	ErrCodeBadSymbol   = "E101" // Symbol missing or malformed
	ErrCodeBadSource   = "E102" // Unknown source
	ErrCodeBadGrouping = "E103" // Unknown or incompatible grouping
	ErrCodeBadMetrics  = "E104" // Metric/column/alias problems
	ErrCodeBadFilters  = "E105" // Filter problems (dates, sessions, conditions)
	ErrCodeBadOp       = "E106" // Special-op tag/payload mismatch
	ErrCodeBadOrdering = "E107" // order_by/direction/limit problems
	ErrCodeBadCompare  = "E108" // Comparison items problems
)

// MapFieldToErrorCode maps a validation error field path to an error code.
func MapFieldToErrorCode(field string) string {
	root := field
	if i := strings.IndexByte(field, '.'); i >= 0 {
		root = field[:i]
	}
	if i := strings.IndexByte(root, '['); i >= 0 {
		root = root[:i]
	}

	switch root {
	case "symbol":
		return ErrCodeBadSymbol
	case "source":
		return ErrCodeBadSource
	case "grouping":
		return ErrCodeBadGrouping
	case "metrics":
		return ErrCodeBadMetrics
	case "filters":
		return ErrCodeBadFilters
	case "special_op", "event_time", "find_extremum", "top_n":
		return ErrCodeBadOp
	case "order_by", "order_direction", "limit":
		return ErrCodeBadOrdering
	case "compare":
		return ErrCodeBadCompare
	default:
		return ErrCodeGeneric
	}
}
