package pipeline

import (
	"context"

	"github.com/spf13/cast"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// TypeConvert returns a stage that coerces raw, loosely-typed arguments
// into the declared parameter types before the tool body runs.
//
// A value that cannot be coerced, or a missing required parameter, produces
// a TypeMismatchError naming the offending parameter; the tool body is
// never invoked in that case. Arguments not declared by the tool are
// dropped rather than passed through.
func TypeConvert(params []Param, inner ToolFunc) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		converted := make(map[string]any, len(params))

		for _, p := range params {
			raw, present := args[p.Name]
			if !present {
				if p.Required {
					return nil, &errors.TypeMismatchError{
						Param:    p.Name,
						Expected: string(p.Type),
						Received: nil,
					}
				}

				continue
			}

			value, err := coerce(p.Type, raw)
			if err != nil {
				return nil, &errors.TypeMismatchError{
					Param:    p.Name,
					Expected: string(p.Type),
					Received: raw,
					Err:      err,
				}
			}

			converted[p.Name] = value
		}

		return inner(ctx, converted)
	}
}

func coerce(t ParamType, raw any) (any, error) {
	switch t {
	case TypeString:
		return cast.ToStringE(raw)
	case TypeInt:
		return cast.ToIntE(raw)
	case TypeFloat:
		return cast.ToFloat64E(raw)
	case TypeBool:
		return cast.ToBoolE(raw)
	case TypeStringList:
		return cast.ToStringSliceE(raw)
	case TypeAny:
		return raw, nil
	default:
		return cast.ToStringE(raw)
	}
}
