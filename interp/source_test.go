package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythiaco/pythia/golib/errors"
)

func TestSourceValidate_WellFormed(t *testing.T) {
	src := &Source{
		Name: "m",
		Functions: []*FuncDef{{
			Name: "f",
			Body: []Op{
				{Code: OpLoadConst, Const: 1},
				{Code: OpReturn},
			},
		}},
		Classes: []*ClassDef{{
			Name: "C",
			Methods: []*FuncDef{{
				Name:   "size",
				Params: []ParamDef{{Name: "self"}},
				Body: []Op{
					{Code: OpLoadConst, Const: 0},
					{Code: OpReturn},
				},
			}},
		}},
		Body: []Op{
			{Code: OpMakeFunction, Name: "f"},
			{Code: OpStoreName, Name: "f"},
			{Code: OpMakeClass, Name: "C"},
			{Code: OpStoreName, Name: "C"},
			{Code: OpLoadName, Name: "f"},
			{Code: OpCallFunction},
			{Code: OpBranch, Name: "done"},
			{Code: OpLoadConst, Const: "dead"},
			{Code: OpLabel, Name: "done"},
		},
	}
	require.NoError(t, src.Validate())
}

func TestSourceValidate_ReportsEverything(t *testing.T) {
	src := &Source{
		Name: "m",
		Functions: []*FuncDef{
			{Name: "f", Body: []Op{{Code: OpReturn}}},
			{Name: "f", Body: []Op{{Code: Opcode("explode")}}},
		},
		Classes: []*ClassDef{{
			Name: "C",
			Methods: []*FuncDef{{
				Name: "m",
				Body: []Op{{Code: OpJump, Name: "nowhere"}},
			}},
		}},
		Body: []Op{
			{Code: OpMakeFunction, Name: "g"},
			{Code: OpMakeClass, Name: "D"},
			{Code: OpBuildList, Count: -1},
			{Code: OpLoadAttr},
		},
	}

	err := src.Validate()
	require.Error(t, err)
	errs, ok := err.(errors.Errors)
	require.True(t, ok)
	assert.Equal(t, 7, errs.Len())

	text := err.Error()
	assert.Contains(t, text, `duplicate definition of "f"`)
	assert.Contains(t, text, `function f, op 0: unknown opcode "explode"`)
	assert.Contains(t, text, `C.m, op 0: jump to undeclared label "nowhere"`)
	assert.Contains(t, text, `no function definition named "g"`)
	assert.Contains(t, text, `no class definition named "D"`)
	assert.Contains(t, text, `build_list with count -1`)
	assert.Contains(t, text, `load_attr needs a name`)
}

func TestSourceValidate_LabelsAreLocalToTheirStream(t *testing.T) {
	src := &Source{
		Name: "m",
		Functions: []*FuncDef{{
			Name: "f",
			Body: []Op{
				{Code: OpJump, Name: "done"},
				{Code: OpLabel, Name: "done"},
				{Code: OpReturn},
			},
		}},
		// the module body jumps to a label only f declares
		Body: []Op{{Code: OpJump, Name: "done"}},
	}

	err := src.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `module body, op 0: jump to undeclared label "done"`)
}
