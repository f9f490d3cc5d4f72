package hcl

import (
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// paramEvalContext is the evaluation context of processor parameters. It
// has no variables, only pure functions, so a parameter's value never
// depends on anything outside the session file.
func paramEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"abs":     stdlib.AbsoluteFunc,
			"ceil":    stdlib.CeilFunc,
			"floor":   stdlib.FloorFunc,
			"max":     stdlib.MaxFunc,
			"min":     stdlib.MinFunc,
			"db":      dbFunc,
			"note_hz": noteHzFunc,
		},
	}
}

// dbFunc converts decibels to a linear gain factor: db(-6) is about 0.5.
var dbFunc = unaryNumberFunc("decibels", func(db float64) float64 {
	return math.Pow(10, db/20)
})

// noteHzFunc returns the equal-tempered frequency of a MIDI note number,
// with A4 (69) at 440 Hz.
var noteHzFunc = unaryNumberFunc("note", func(n float64) float64 {
	return 440 * math.Pow(2, (n-69)/12)
})

func unaryNumberFunc(param string, f func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: param, Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			in, _ := args[0].AsBigFloat().Float64()
			return cty.NumberFloatVal(f(in)), nil
		},
	})
}
