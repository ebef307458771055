package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator over `validate:"..."` struct tags. Supports:
// - required (non-empty string, non-nil pointer; other kinds always pass)
// - email
// - phone (local or +country prefixed, 9-12 digits)
// - max=N (string length ceiling)
//
// Request structs mark optional scalars as pointers, so "required" on a
// numeric field is a nil check rather than a zero check: a legitimate 0
// quantity or probability is present, an omitted field is not.

var (
	reEmail = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
	rePhone = regexp.MustCompile(`^(0|\+\d{1,3})\d{8,11}$`)
)

// ValidateStruct inspects struct tags and returns the first error found.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		fv := v.Field(i)
		present := true
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				present = false
			} else {
				fv = fv.Elem()
			}
		}
		isString := present && fv.Kind() == reflect.String
		var sval string
		if isString {
			sval = strings.TrimSpace(fv.String())
		}
		for _, rule := range strings.Split(tag, ",") {
			rule = strings.TrimSpace(rule)
			switch {
			case rule == "required":
				if !present || (isString && sval == "") {
					return errors.New(field.Name + " is required")
				}
			case rule == "email":
				if sval != "" && !reEmail.MatchString(sval) {
					return errors.New(field.Name + " must be a valid email address")
				}
			case rule == "phone":
				if sval != "" && !rePhone.MatchString(sval) {
					return errors.New(field.Name + " must be a valid phone number")
				}
			case strings.HasPrefix(rule, "max="):
				if n := atoiDefault(strings.TrimPrefix(rule, "max="), 0); n > 0 && len(sval) > n {
					return errors.New(field.Name + " is too long")
				}
			}
		}
	}
	return nil
}

func atoiDefault(s string, def int) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}
