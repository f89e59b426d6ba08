// AngelaMos | 2026
// procedure.go

package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/apptnu/portal/internal/core"
)

type Kind int

const (
	KindQuery Kind = iota
	KindMutation
)

func (k Kind) Method() string {
	if k == KindMutation {
		return http.MethodPost
	}
	return http.MethodGet
}

func (k Kind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

// Empty is the input type of procedures that take no arguments.
type Empty struct{}

// SelfValidator is implemented by inputs whose rules cannot be expressed
// with struct tags, such as tri-state patch fields.
type SelfValidator interface {
	Validate(v *validator.Validate) error
}

type handleFunc func(
	ctx context.Context,
	v *validator.Validate,
	raw []byte,
) (any, error)

// Procedure is a named remote operation with typed input and output.
type Procedure struct {
	Name   string
	Kind   Kind
	Access Access
	handle handleFunc
}

func Query[I, O any](
	name string,
	access Access,
	fn func(ctx context.Context, in I) (O, error),
) Procedure {
	return newProcedure(name, KindQuery, access, fn)
}

func Mutation[I, O any](
	name string,
	access Access,
	fn func(ctx context.Context, in I) (O, error),
) Procedure {
	return newProcedure(name, KindMutation, access, fn)
}

func newProcedure[I, O any](
	name string,
	kind Kind,
	access Access,
	fn func(ctx context.Context, in I) (O, error),
) Procedure {
	return Procedure{
		Name:   name,
		Kind:   kind,
		Access: access,
		handle: func(ctx context.Context, v *validator.Validate, raw []byte) (any, error) {
			var in I
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &in); err != nil {
					return nil, core.NewAppError(
						core.ErrInvalidInput,
						"input is not valid JSON for "+name,
						http.StatusBadRequest,
						"BAD_REQUEST",
					)
				}
			}

			if err := validateInput(v, &in); err != nil {
				return nil, err
			}

			return fn(ctx, in)
		},
	}
}

func validateInput(v *validator.Validate, in any) error {
	if reflect.Indirect(reflect.ValueOf(in)).Kind() == reflect.Struct {
		if err := v.Struct(in); err != nil {
			return core.ValidationError(core.FormatValidationError(err))
		}
	}

	if sv, ok := in.(SelfValidator); ok {
		return sv.Validate(v)
	}

	return nil
}
