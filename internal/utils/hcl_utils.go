package utils

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// FormatHclResourceName ensures that resources are all 'snake_case'. IAM
// allows characters like '.' and '@' in names that Terraform rejects in a
// resource address, so anything outside [a-z0-9_] becomes an underscore and
// a leading digit gets one prefixed.
func FormatHclResourceName(resourceName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, resourceName)
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

// TokensForStringTemplate creates properly formatted tokens for a template string (string with ${} interpolations)
func TokensForStringTemplate(template string) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenOQuote, Bytes: []byte(`"`)},
		&hclwrite.Token{Type: hclsyntax.TokenQuotedLit, Bytes: []byte(template)},
		&hclwrite.Token{Type: hclsyntax.TokenCQuote, Bytes: []byte(`"`)},
	}
}

// TokensForResourceReference creates tokens for a resource reference (e.g., "aws_vpc.main.id")
func TokensForResourceReference(ref string) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte(ref)},
	}
}

// TokensForVarReference creates tokens for a Terraform variable reference (e.g., "var.my_variable")
func TokensForVarReference(varName string) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte("var." + varName)},
	}
}

// TokensForVarIndex creates tokens for an indexed variable reference (e.g., "var.subnet_cidrs[2]")
func TokensForVarIndex(varName string, index int) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: fmt.Appendf(nil, "var.%s[%d]", varName, index)},
	}
}

// TokensForList creates tokens for an array literal of raw expressions (e.g., resource references)
func TokensForList(items []string) hclwrite.Tokens {
	tokens := hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenOBrack, Bytes: []byte("[")},
	}

	for i, item := range items {
		tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte(item)})
		if i < len(items)-1 {
			tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenComma, Bytes: []byte(",")})
		}
	}

	tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenCBrack, Bytes: []byte("]")})
	return tokens
}

// TokensForStringList creates tokens for a list of quoted strings (e.g., ["item1", "item2"])
func TokensForStringList(items []string) hclwrite.Tokens {
	if len(items) == 0 {
		return hclwrite.TokensForValue(cty.ListValEmpty(cty.String))
	}

	values := make([]cty.Value, len(items))
	for i, item := range items {
		values[i] = cty.StringVal(item)
	}

	return hclwrite.TokensForValue(cty.ListVal(values))
}

// TokensForFunctionCall creates tokens for a function call (e.g., jsonencode({...}))
func TokensForFunctionCall(functionName string, args ...hclwrite.Tokens) hclwrite.Tokens {
	tokens := hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte(functionName)},
		&hclwrite.Token{Type: hclsyntax.TokenOParen, Bytes: []byte("(")},
	}

	for i, arg := range args {
		if i > 0 {
			tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenComma, Bytes: []byte(", ")})
		}
		tokens = append(tokens, arg...)
	}

	tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenCParen, Bytes: []byte(")")})
	return tokens
}

// TokensForMap creates tokens for a map/object with string keys and token values.
// Keys are emitted in sorted order so generated files are byte-stable across runs.
// Keys that are not bare HCL identifiers (e.g. tag keys like "kubernetes.io/role")
// are quoted.
func TokensForMap(entries map[string]hclwrite.Tokens) hclwrite.Tokens {
	tokens := hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenOBrace, Bytes: []byte("{")},
		&hclwrite.Token{Type: hclsyntax.TokenNewline, Bytes: []byte("\n")},
	}

	for _, key := range slices.Sorted(maps.Keys(entries)) {
		if hclsyntax.ValidIdentifier(key) {
			tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte(key)})
		} else {
			tokens = append(tokens, TokensForStringTemplate(key)...)
		}
		tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenEqual, Bytes: []byte(" = ")})
		tokens = append(tokens, entries[key]...)
		tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenNewline, Bytes: []byte("\n")})
	}

	tokens = append(tokens, &hclwrite.Token{Type: hclsyntax.TokenCBrace, Bytes: []byte("}")})
	return tokens
}

// TokensForComment creates tokens for a single-line comment ending in a newline.
func TokensForComment(comment string) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenComment, Bytes: []byte("# " + comment + "\n")},
	}
}

// ConvertToCtyValue converts plain Go values (as produced by encoding/json) into
// cty values suitable for hclwrite.TokensForValue.
func ConvertToCtyValue(value any) (cty.Value, error) {
	switch v := value.(type) {
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case []string:
		if len(v) == 0 {
			return cty.ListValEmpty(cty.String), nil
		}
		values := make([]cty.Value, len(v))
		for i, item := range v {
			values[i] = cty.StringVal(item)
		}
		return cty.ListVal(values), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		values := make([]cty.Value, len(v))
		for i, item := range v {
			converted, err := ConvertToCtyValue(item)
			if err != nil {
				return cty.NilVal, err
			}
			values[i] = converted
		}
		return cty.TupleVal(values), nil
	case map[string]string:
		if len(v) == 0 {
			return cty.MapValEmpty(cty.String), nil
		}
		values := make(map[string]cty.Value, len(v))
		for key, item := range v {
			values[key] = cty.StringVal(item)
		}
		return cty.MapVal(values), nil
	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		values := make(map[string]cty.Value, len(v))
		for key, item := range v {
			converted, err := ConvertToCtyValue(item)
			if err != nil {
				return cty.NilVal, err
			}
			values[key] = converted
		}
		return cty.ObjectVal(values), nil
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type: %T", value)
	}
}
