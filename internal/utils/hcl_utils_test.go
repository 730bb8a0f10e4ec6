package utils

import (
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFormatHclResourceName(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedOutput string
	}{
		{
			name:           "dashes become underscores",
			input:          "prod-network",
			expectedOutput: "prod_network",
		},
		{
			name:           "uppercase becomes lowercase",
			input:          "Prod-Network",
			expectedOutput: "prod_network",
		},
		{
			name:           "already snake_case is unchanged",
			input:          "prod_network",
			expectedOutput: "prod_network",
		},
		{
			name:           "dots become underscores",
			input:          "s3.read",
			expectedOutput: "s3_read",
		},
		{
			name:           "at signs become underscores",
			input:          "deploy@prod",
			expectedOutput: "deploy_prod",
		},
		{
			name:           "leading digit gets a prefix",
			input:          "3rd-party",
			expectedOutput: "_3rd_party",
		},
		{
			name:           "empty input yields a valid name",
			input:          "",
			expectedOutput: "_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedOutput, FormatHclResourceName(tt.input))
		})
	}
}

func renderAttribute(t *testing.T, tokens hclwrite.Tokens) string {
	t.Helper()
	f := hclwrite.NewEmptyFile()
	f.Body().SetAttributeRaw("value", tokens)
	return string(f.Bytes())
}

func TestTokensForStringTemplate(t *testing.T) {
	rendered := renderAttribute(t, TokensForStringTemplate("${var.vpc_name}-public-1"))
	assert.Contains(t, rendered, `"${var.vpc_name}-public-1"`)
}

func TestTokensForVarReference(t *testing.T) {
	rendered := renderAttribute(t, TokensForVarReference("vpc_cidr"))
	assert.Contains(t, rendered, "var.vpc_cidr")
}

func TestTokensForVarIndex(t *testing.T) {
	rendered := renderAttribute(t, TokensForVarIndex("public_subnet_cidrs", 2))
	assert.Contains(t, rendered, "var.public_subnet_cidrs[2]")
}

func TestTokensForList(t *testing.T) {
	rendered := renderAttribute(t, TokensForList([]string{"aws_internet_gateway.main"}))
	assert.Contains(t, rendered, "[aws_internet_gateway.main]")
}

func TestTokensForStringList(t *testing.T) {
	rendered := renderAttribute(t, TokensForStringList([]string{"sts.amazonaws.com"}))
	assert.Contains(t, rendered, `"sts.amazonaws.com"`)

	rendered = renderAttribute(t, TokensForStringList(nil))
	assert.Contains(t, rendered, "[]")
}

func TestTokensForMapIsSorted(t *testing.T) {
	rendered := renderAttribute(t, TokensForMap(map[string]hclwrite.Tokens{
		"Type":        TokensForStringTemplate("public"),
		"Environment": TokensForStringTemplate("prod"),
		"Name":        TokensForStringTemplate("main"),
	}))

	environmentIdx := strings.Index(rendered, "Environment")
	nameIdx := strings.Index(rendered, "Name")
	typeIdx := strings.Index(rendered, "Type")

	require.GreaterOrEqual(t, environmentIdx, 0)
	assert.Less(t, environmentIdx, nameIdx)
	assert.Less(t, nameIdx, typeIdx)
}

func TestTokensForFunctionCall(t *testing.T) {
	value, err := ConvertToCtyValue(map[string]any{"Version": "2012-10-17"})
	require.NoError(t, err)

	rendered := renderAttribute(t, TokensForFunctionCall("jsonencode", hclwrite.TokensForValue(value)))
	assert.Contains(t, rendered, "jsonencode(")
	assert.Contains(t, rendered, `"2012-10-17"`)
}

func TestConvertToCtyValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected cty.Value
	}{
		{
			name:     "string",
			input:    "10.0.0.0/16",
			expected: cty.StringVal("10.0.0.0/16"),
		},
		{
			name:     "bool",
			input:    true,
			expected: cty.True,
		},
		{
			name:     "float64 as produced by encoding/json",
			input:    float64(3),
			expected: cty.NumberFloatVal(3),
		},
		{
			name:     "string slice",
			input:    []string{"us-east-1a", "us-east-1b"},
			expected: cty.ListVal([]cty.Value{cty.StringVal("us-east-1a"), cty.StringVal("us-east-1b")}),
		},
		{
			name:     "empty string slice",
			input:    []string{},
			expected: cty.ListValEmpty(cty.String),
		},
		{
			name:     "string map",
			input:    map[string]string{"Team": "platform"},
			expected: cty.MapVal(map[string]cty.Value{"Team": cty.StringVal("platform")}),
		},
		{
			name:  "nested object",
			input: map[string]any{"Statement": []any{map[string]any{"Effect": "Allow"}}},
			expected: cty.ObjectVal(map[string]cty.Value{
				"Statement": cty.TupleVal([]cty.Value{
					cty.ObjectVal(map[string]cty.Value{"Effect": cty.StringVal("Allow")}),
				}),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ConvertToCtyValue(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.RawEquals(result), "expected %#v, got %#v", tt.expected, result)
		})
	}
}

func TestConvertToCtyValueRejectsUnsupportedTypes(t *testing.T) {
	_, err := ConvertToCtyValue(struct{}{})
	assert.Error(t, err)
}
