package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"

	"github.com/labstack/echo/v4"
)

// WrapHandler adapts `func(echo.Context, Req) (Res, error)` or
// `func(echo.Context, Req) error` into an echo handler. Req is bound and
// validated with BindAndValidate. A *Response result is sent as is, any other
// result is wrapped in a 200 success envelope.
func WrapHandler(f interface{}) echo.HandlerFunc {
	handler, err := wrapHandler(f)
	if err != nil {
		panic(err)
	}

	return handler
}

func wrapHandler(f interface{}) (echo.HandlerFunc, error) {
	fTyp := reflect.TypeOf(f)
	fVal := reflect.ValueOf(f)

	if fVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("invalid function passed to wrap handler: %v", fVal)
	}
	fName := runtime.FuncForPC(fVal.Pointer()).Name()

	numIn := fTyp.NumIn()
	if numIn != 2 {
		return nil, fmt.Errorf("[%s] invalid function arguments length: %d", fName, numIn)
	}

	ctxInterface := reflect.TypeOf((*echo.Context)(nil)).Elem()
	if !fTyp.In(0).Implements(ctxInterface) {
		return nil, fmt.Errorf("[%s] first argument must has type echo.Context", fName)
	}

	if kind := fTyp.In(1).Kind(); kind != reflect.Struct {
		return nil, fmt.Errorf("[%s] second argument must has type struct: %v", fName, kind)
	}

	numOut := fTyp.NumOut()
	if numOut < 1 || numOut > 2 {
		return nil, fmt.Errorf("[%s] invalid function returns length: %d", fName, numOut)
	}

	errorInterface := reflect.TypeOf((*error)(nil)).Elem()
	errorIndex := numOut - 1
	if last := fTyp.Out(errorIndex); !last.Implements(errorInterface) {
		return nil, fmt.Errorf("[%s] last return argument must has type error: %v", fName, last)
	}

	reqType := fTyp.In(1)

	handler := func(c echo.Context) error {
		req := reflect.New(reqType)
		if err := BindAndValidate(c, req.Interface()); err != nil {
			return err
		}

		res := fVal.Call([]reflect.Value{reflect.ValueOf(c), req.Elem()})
		if !res[errorIndex].IsNil() {
			err, ok := res[errorIndex].Interface().(error)
			if !ok {
				return fmt.Errorf("could not cast error index: %+v", res[errorIndex].Interface())
			}
			return err
		}

		if c.Response().Committed {
			return nil
		}

		if numOut == 1 {
			return c.JSON(http.StatusOK, NewResponse(http.StatusOK, "", nil))
		}

		data := res[0].Interface()
		resp, ok := data.(*Response)
		if !ok {
			resp = NewResponse(http.StatusOK, "", data)
		}
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		resp.Success = true
		return c.JSON(resp.Status, resp)
	}

	return handler, nil
}
