package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/cstockton/go-conv"
	"github.com/labstack/echo/v4"
)

type normalizer interface {
	Normalize()
}

// BindAndValidate bind request context and validate request struct.
// Bind includes request body, params, query, headers and values the auth
// middleware stored on the echo context (tag `ctx:"key"`). Requests that can
// normalize themselves do so before validation.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return err
	}

	if err := bindContext(c, req); err != nil {
		return err
	}

	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}

	if err := c.Validate(req); err != nil {
		var re *ResponseError
		if errors.As(err, &re) {
			return re
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// bindContext decode echo context values to struct by tag `ctx:"<key>"`
func bindContext(c echo.Context, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		value := c.Get(tagValue)
		if value == nil {
			return "", nil
		}
		return value, nil
	}

	return bindStruct(dst, "ctx", getValueFn)
}

// bindHeader decode http header to struct by tag `header:"<header_name>"`
// out must be a pointer to a struct
func bindHeader(header http.Header, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		return header.Get(tagValue), nil
	}

	return bindStruct(dst, "header", getValueFn)
}

// bindStruct decode to struct by custom tag `tagName:"tagValue"`
// dst must be a pointer to a struct
func bindStruct(dst interface{}, tagName string, getValueFn func(tagValue string) (interface{}, error)) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("non-pointer passed to Unmarshal")
	}

	indirect := reflect.Indirect(ptr)
	structType := indirect.Type()
	elemZero := reflect.Zero(structType)

	numField := elemZero.NumField()
	for i := 0; i < numField; i++ {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "-" || tagValue == "" {
			continue
		}

		field := indirect.Field(i)
		value, err := getValueFn(tagValue)
		if err != nil {
			return err
		}
		if err := conv.Infer(field, value); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from: %#v / %s",
				structType.Name(), structField.Name, field.Type(), value, err)
		}
	}

	return nil
}
