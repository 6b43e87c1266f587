// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builtin

import (
	"fmt"

	"github.com/open2b/enjoy/ast"
	"github.com/open2b/enjoy/runtime"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// defaultLocale is the locale used when a format directive has no locale
// argument.
const defaultLocale = "en"

// Number is the "number" directive. It shows a number formatted for a
// locale, "en" if the locale is omitted.
//
//	#number(price)       1,234.5
//	#number(price, "it") 1.234,5
var Number runtime.Directive = &formatter{
	min: 1,
	max: 2,
	format: func(p *message.Printer, f float64, _ []runtime.Value) (string, error) {
		return p.Sprintf("%v", number.Decimal(f)), nil
	},
}

// Percent is the "percent" directive. It shows a ratio as a percentage
// formatted for a locale, "en" if the locale is omitted.
//
//	#percent(0.25) 25%
var Percent runtime.Directive = &formatter{
	min: 1,
	max: 2,
	format: func(p *message.Printer, f float64, _ []runtime.Value) (string, error) {
		return p.Sprintf("%v", number.Percent(f)), nil
	},
}

// Currency is the "currency" directive. It shows an amount with the symbol
// of a currency, given as an ISO 4217 code, formatted for a locale, "en" if
// the locale is omitted.
//
//	#currency(price, "EUR", "it")
var Currency runtime.Directive = &formatter{
	min: 2,
	max: 3,
	format: func(p *message.Printer, f float64, args []runtime.Value) (string, error) {
		if args[1].Kind() != runtime.KindText {
			return "", fmt.Errorf("cannot use %s as currency code", args[1].Kind())
		}
		unit, err := currency.ParseISO(args[1].Text())
		if err != nil {
			return "", fmt.Errorf("invalid currency code %q", args[1].Text())
		}
		return p.Sprintf("%v", currency.Symbol(unit.Amount(f))), nil
	},
}

// formatter implements a directive that shows a formatted number.
type formatter struct {
	min, max int // minimum and maximum number of arguments; the locale is the last optional one.
	format   func(p *message.Printer, f float64, args []runtime.Value) (string, error)
}

// Parse implements the runtime.Directive interface.
func (fm *formatter) Parse(node *ast.Custom) error {
	if node.HasBody {
		return fmt.Errorf("unexpected body")
	}
	if n := len(node.Args); n < fm.min || n > fm.max {
		return fmt.Errorf("wrong number of arguments, have %d, want %d or %d", n, fm.min, fm.max)
	}
	return nil
}

// Execute implements the runtime.Directive interface.
func (fm *formatter) Execute(env runtime.Env, node *ast.Custom) error {
	args := make([]runtime.Value, len(node.Args))
	for i, expr := range node.Args {
		v, err := env.Eval(expr)
		if err != nil {
			return err
		}
		args[i] = v
	}
	if args[0].IsNull() {
		return nil
	}
	if args[0].Kind() != runtime.KindNumber {
		return fmt.Errorf("cannot use %s as number", args[0].Kind())
	}
	locale := defaultLocale
	if i := fm.max - 1; i < len(args) {
		if args[i].Kind() != runtime.KindText {
			return fmt.Errorf("cannot use %s as locale", args[i].Kind())
		}
		locale = args[i].Text()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q", locale)
	}
	f, _ := args[0].Number().Float64()
	s, err := fm.format(message.NewPrinter(tag), f, args)
	if err != nil {
		return err
	}
	return env.Show(runtime.Text(s))
}
