package vis

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultFilenamePattern - one file per area and dataset
const DefaultFilenamePattern = "{area:s}_{dataset:s}.tiff"

// FormatFilename - replaces {field} and {field:s} in pattern with the field values. {{ and }}
// give literal braces. Unknown fields are an error
func FormatFilename(pattern string, fields map[string]string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '{' && i+1 < len(pattern) && pattern[i+1] == '{':
			sb.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(pattern) && pattern[i+1] == '}':
			sb.WriteByte('}')
			i++
		case ch == '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return "", errors.Errorf("Unterminated field in filename pattern %v", pattern)
			}
			name, spec, _ := strings.Cut(pattern[i+1:i+end], ":")
			if len(spec) > 0 && spec != "s" {
				return "", errors.Errorf("Unsupported format %q for field %v in filename pattern %v", spec, name, pattern)
			}
			value, ok := fields[name]
			if !ok {
				return "", errors.Errorf("Unknown field %q in filename pattern %v, have: %v", name, pattern, fieldNames(fields))
			}
			sb.WriteString(value)
			i += end
		case ch == '}':
			return "", errors.Errorf("Single '}' in filename pattern %v", pattern)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String(), nil
}

func fieldNames(fields map[string]string) []string {
	result := make([]string, 0, len(fields))
	for k := range fields {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
