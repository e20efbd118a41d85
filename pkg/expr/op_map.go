package expr

import (
	"math"

	"github.com/flywave/flywave-style/pkg/types"
)

// defaultPPI is assumed when the environment does not bind $ppi.
const defaultPPI = 72

// worldBaseZoom anchors pixel-to-world scaling: at zoom 17 one pixel maps to
// one world unit, halving with every zoom level above it.
const worldBaseZoom = 17

// registerMapOps registers the pixel/zoom scaling operators.
func (r *Registry) registerMapOps() {
	r.Register("ppi-scale", OpDescriptor{Call: opPPIScale})
	r.Register("world-ppi-scale", OpDescriptor{Call: worldPPIScale(false), Dynamic: true})
	r.Register("world-discrete-ppi-scale", OpDescriptor{Call: worldPPIScale(true), Dynamic: true})
	r.Register("ppi", OpDescriptor{Call: opPPI})
	r.Register("zoom", OpDescriptor{Call: opZoom, Dynamic: true})
}

// scaleArgs evaluates the value argument and the optional scale factor
// (default 1).
func scaleArgs(ctx *Context, call *Call) (value, scale float64, err error) {
	if err := requireArgs(call, 1, 2); err != nil {
		return 0, 0, err
	}
	args, err := ctx.evaluateArgs(call)
	if err != nil {
		return 0, 0, err
	}
	value, ok := args[0].Number()
	if !ok {
		return 0, 0, types.NewInvalidOperandsError(call.Op, "value must be a number")
	}
	scale = 1
	if len(args) == 2 {
		scale, ok = args[1].Number()
		if !ok {
			return 0, 0, types.NewInvalidOperandsError(call.Op, "scale factor must be a number")
		}
	}
	return value, scale, nil
}

func opPPIScale(ctx *Context, call *Call) (types.Value, error) {
	value, scale, err := scaleArgs(ctx, call)
	if err != nil {
		return types.Null, err
	}
	return types.NewNumber(value * scale), nil
}

// worldPPIScale converts screen pixels to world units at the current zoom:
// pixels * (2^worldBaseZoom / 2^zoom) * scaleFactor. The discrete variant
// floors the zoom level first.
func worldPPIScale(discrete bool) OpFunc {
	return func(ctx *Context, call *Call) (types.Value, error) {
		pixels, scale, err := scaleArgs(ctx, call)
		if err != nil {
			return types.Null, err
		}
		zv, ok := ctx.Env().Lookup(VarZoom)
		if !ok {
			return types.Null, types.NewInvalidOperandsError(call.Op, "$zoom is not bound")
		}
		zoom, ok := zv.Number()
		if !ok {
			return types.Null, types.NewInvalidOperandsError(call.Op, "$zoom is not a number")
		}
		if discrete {
			zoom = math.Floor(zoom)
		}
		factor := math.Exp2(worldBaseZoom) / math.Exp2(zoom)
		return types.NewNumber(pixels * factor * scale), nil
	}
}

func opPPI(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 0, 0); err != nil {
		return types.Null, err
	}
	if v, ok := ctx.Env().Lookup(VarPPI); ok {
		if ppi, isNum := v.Number(); isNum {
			return types.NewNumber(ppi), nil
		}
	}
	return types.NewNumber(defaultPPI), nil
}

// opZoom reads the continuous zoom level. In value scope the frame zoom is
// not known yet, so the call defers for re-evaluation in dynamic scope.
func opZoom(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 0, 0); err != nil {
		return types.Null, err
	}
	if ctx.Scope() != DynamicScope {
		return types.NewDeferred(call), nil
	}
	if v, ok := ctx.Env().Lookup(VarZoom); ok {
		if zoom, isNum := v.Number(); isNum {
			return types.NewNumber(zoom), nil
		}
	}
	return types.Null, nil
}
