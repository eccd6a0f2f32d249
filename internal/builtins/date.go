package builtins

import (
	"fmt"
	"math"
	"time"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installDate builds the Date constructor (ES5 §15.9.3) and Date.prototype
// (§15.9.5), backing each instance's [[PrimitiveValue]] with the ES5 "time
// value": a Number holding milliseconds since the epoch, NaN for an
// Invalid Date. Calendar math is delegated to time.Time/time.UTC rather
// than hand-rolled, per spec.md §1's "timezone/locale data treated as
// injected functions" — this project injects the Go standard library's.
func installDate(it *interp.Interpreter) *object.Object {
	proto := it.DatePrototype
	proto.PrimitiveValue, proto.HasPrimitive = value.Number(math.NaN()), true

	ctor := nativeFunc(it, "Date", 7, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.StrFromGo(formatDate(time.Now().UnixMilli())), nil
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		tv, err := dateConstructTimeValue(it, args)
		if err != nil {
			return value.Undefined, err
		}
		o := it.NewObject("Date", proto)
		o.PrimitiveValue, o.HasPrimitive = value.Number(tv), true
		return value.Object(o), nil
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, ctor, "now", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(time.Now().UnixMilli())), nil
	})
	defineMethod(it, ctor, "parse", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(parseDate(s.String())), nil
	})
	defineMethod(it, ctor, "UTC", 7, func(this value.Value, args []value.Value) (value.Value, error) {
		tv, err := dateFromComponents(it, args, 0)
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(tv), nil
	})

	installDatePrototype(it, proto)
	return ctor
}

func dateConstructTimeValue(it *interp.Interpreter, args []value.Value) (float64, error) {
	switch len(args) {
	case 0:
		return float64(time.Now().UnixMilli()), nil
	case 1:
		a := arg(args, 0)
		if o, ok := objectRef(a); ok && o.ClassName() == "Date" {
			return o.PrimitiveValue.NumberValue(), nil
		}
		prim, err := it.ToPrimitive(a, "")
		if err != nil {
			return 0, err
		}
		if prim.IsString() {
			return parseDate(prim.StringValue().String()), nil
		}
		n, err := it.ToNumber(prim)
		if err != nil {
			return 0, err
		}
		return timeClip(n), nil
	default:
		return dateFromComponents(it, args, 0)
	}
}

// dateFromComponents builds a time value from (year, month[, day[, hours[,
// minutes[, seconds[, ms]]]]]) per ES5 §15.9.4.3/§15.9.3.1, honoring the
// two-digit-year convention (0-99 maps to 1900-1999).
func dateFromComponents(it *interp.Interpreter, args []value.Value, skip int) (float64, error) {
	get := func(i int, def float64) (float64, error) {
		idx := skip + i
		if idx >= len(args) {
			return def, nil
		}
		return it.ToNumber(args[idx])
	}
	year, err := get(0, 0)
	if err != nil {
		return 0, err
	}
	month, err := get(1, 0)
	if err != nil {
		return 0, err
	}
	day, err := get(2, 1)
	if err != nil {
		return 0, err
	}
	hour, err := get(3, 0)
	if err != nil {
		return 0, err
	}
	minute, err := get(4, 0)
	if err != nil {
		return 0, err
	}
	second, err := get(5, 0)
	if err != nil {
		return 0, err
	}
	ms, err := get(6, 0)
	if err != nil {
		return 0, err
	}
	if isNaNf(year) || isNaNf(month) || isNaNf(day) || isNaNf(hour) || isNaNf(minute) || isNaNf(second) || isNaNf(ms) {
		return math.NaN(), nil
	}
	if year >= 0 && year <= 99 {
		year += 1900
	}
	t := time.Date(int(year), time.Month(1), 1, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, int(month), int(day)-1)
	t = t.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second + time.Duration(ms)*time.Millisecond)
	return timeClip(float64(t.UnixMilli())), nil
}

func isNaNf(n float64) bool { return n != n }

// timeClip implements ES5 §15.9.1.14: times outside ±8,640,000,000,000,000ms
// become NaN.
func timeClip(n float64) float64 {
	if math.IsNaN(n) || math.Abs(n) > 8.64e15 {
		return math.NaN()
	}
	return math.Trunc(n)
}

// parseDate accepts the ES5 simplified ISO 8601 form plus the common
// RFC1123-ish formats most hosts also accept; anything unrecognized yields
// NaN rather than erroring, matching Date.parse's documented behavior.
func parseDate(s string) float64 {
	layouts := []string{
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02",
		time.RFC1123,
		time.RFC1123Z,
		time.ANSIC,
		"Mon Jan 02 2006 15:04:05 GMT-0700",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return timeClip(float64(t.UnixMilli()))
		}
	}
	return math.NaN()
}

func formatDate(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	return t.Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

func thisDateTimeValue(this value.Value) (float64, error) {
	o, ok := objectRef(this)
	if !ok || o.ClassName() != "Date" || !o.HasPrimitive {
		return 0, newTypeError("Date.prototype method called on incompatible receiver")
	}
	return o.PrimitiveValue.NumberValue(), nil
}

func installDatePrototype(it *interp.Interpreter, proto *object.Object) {
	getTime := func(this value.Value) (time.Time, float64, error) {
		tv, err := thisDateTimeValue(this)
		if err != nil {
			return time.Time{}, 0, err
		}
		if math.IsNaN(tv) {
			return time.Time{}, tv, nil
		}
		return time.UnixMilli(int64(tv)).UTC(), tv, nil
	}

	field := func(name string, length int, f func(t time.Time) float64) {
		defineMethod(it, proto, name, length, func(this value.Value, args []value.Value) (value.Value, error) {
			t, tv, err := getTime(this)
			if err != nil {
				return value.Undefined, err
			}
			if math.IsNaN(tv) {
				return value.Number(math.NaN()), nil
			}
			return value.Number(f(t)), nil
		})
	}

	field("getTime", 0, func(t time.Time) float64 { return float64(t.UnixMilli()) })
	field("valueOf", 0, func(t time.Time) float64 { return float64(t.UnixMilli()) })
	field("getFullYear", 0, func(t time.Time) float64 { return float64(t.Year()) })
	field("getUTCFullYear", 0, func(t time.Time) float64 { return float64(t.Year()) })
	field("getMonth", 0, func(t time.Time) float64 { return float64(t.Month() - 1) })
	field("getUTCMonth", 0, func(t time.Time) float64 { return float64(t.Month() - 1) })
	field("getDate", 0, func(t time.Time) float64 { return float64(t.Day()) })
	field("getUTCDate", 0, func(t time.Time) float64 { return float64(t.Day()) })
	field("getDay", 0, func(t time.Time) float64 { return float64(t.Weekday()) })
	field("getUTCDay", 0, func(t time.Time) float64 { return float64(t.Weekday()) })
	field("getHours", 0, func(t time.Time) float64 { return float64(t.Hour()) })
	field("getUTCHours", 0, func(t time.Time) float64 { return float64(t.Hour()) })
	field("getMinutes", 0, func(t time.Time) float64 { return float64(t.Minute()) })
	field("getUTCMinutes", 0, func(t time.Time) float64 { return float64(t.Minute()) })
	field("getSeconds", 0, func(t time.Time) float64 { return float64(t.Second()) })
	field("getUTCSeconds", 0, func(t time.Time) float64 { return float64(t.Second()) })
	field("getMilliseconds", 0, func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })
	field("getUTCMilliseconds", 0, func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })
	field("getTimezoneOffset", 0, func(t time.Time) float64 { return 0 })
	field("getYear", 0, func(t time.Time) float64 { return float64(t.Year() - 1900) })

	setField := func(name string, length int, apply func(t time.Time, args []float64) time.Time) {
		defineMethod(it, proto, name, length, func(this value.Value, args []value.Value) (value.Value, error) {
			o, ok := objectRef(this)
			if !ok || o.ClassName() != "Date" {
				return value.Undefined, newTypeError("Date.prototype method called on incompatible receiver")
			}
			nums := make([]float64, len(args))
			for i, a := range args {
				n, err := it.ToNumber(a)
				if err != nil {
					return value.Undefined, err
				}
				nums[i] = n
			}
			for _, n := range nums {
				if isNaNf(n) {
					o.PrimitiveValue, o.HasPrimitive = value.Number(math.NaN()), true
					return o.PrimitiveValue, nil
				}
			}
			cur := o.PrimitiveValue.NumberValue()
			var base time.Time
			if math.IsNaN(cur) {
				base = time.Unix(0, 0).UTC()
			} else {
				base = time.UnixMilli(int64(cur)).UTC()
			}
			t := apply(base, nums)
			tv := timeClip(float64(t.UnixMilli()))
			o.PrimitiveValue, o.HasPrimitive = value.Number(tv), true
			return o.PrimitiveValue, nil
		})
	}

	setField("setTime", 1, func(t time.Time, a []float64) time.Time {
		if len(a) == 0 {
			return t
		}
		return time.UnixMilli(int64(a[0])).UTC()
	})
	setField("setFullYear", 3, func(t time.Time, a []float64) time.Time {
		y, m, d := t.Year(), int(t.Month())-1, t.Day()
		if len(a) > 0 {
			y = int(a[0])
		}
		if len(a) > 1 {
			m = int(a[1])
		}
		if len(a) > 2 {
			d = int(a[2])
		}
		return time.Date(y, time.Month(1), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
			AddDate(0, m, d-1)
	})
	setField("setMonth", 2, func(t time.Time, a []float64) time.Time {
		m, d := int(t.Month())-1, t.Day()
		if len(a) > 0 {
			m = int(a[0])
		}
		if len(a) > 1 {
			d = int(a[1])
		}
		return time.Date(t.Year(), time.Month(1), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
			AddDate(0, m, d-1)
	})
	setField("setDate", 1, func(t time.Time, a []float64) time.Time {
		d := t.Day()
		if len(a) > 0 {
			d = int(a[0])
		}
		return time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
			AddDate(0, 0, d-1)
	})
	setField("setHours", 4, func(t time.Time, a []float64) time.Time {
		h, mi, s, ms := t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6
		if len(a) > 0 {
			h = int(a[0])
		}
		if len(a) > 1 {
			mi = int(a[1])
		}
		if len(a) > 2 {
			s = int(a[2])
		}
		if len(a) > 3 {
			ms = int(a[3])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
			Add(time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute +
				time.Duration(s)*time.Second + time.Duration(ms)*time.Millisecond)
	})
	setField("setMinutes", 3, func(t time.Time, a []float64) time.Time {
		mi, s, ms := t.Minute(), t.Second(), t.Nanosecond()/1e6
		if len(a) > 0 {
			mi = int(a[0])
		}
		if len(a) > 1 {
			s = int(a[1])
		}
		if len(a) > 2 {
			ms = int(a[2])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC).
			Add(time.Duration(mi)*time.Minute + time.Duration(s)*time.Second + time.Duration(ms)*time.Millisecond)
	})
	setField("setSeconds", 2, func(t time.Time, a []float64) time.Time {
		s, ms := t.Second(), t.Nanosecond()/1e6
		if len(a) > 0 {
			s = int(a[0])
		}
		if len(a) > 1 {
			ms = int(a[1])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC).
			Add(time.Duration(s)*time.Second + time.Duration(ms)*time.Millisecond)
	})
	setField("setMilliseconds", 1, func(t time.Time, a []float64) time.Time {
		ms := t.Nanosecond() / 1e6
		if len(a) > 0 {
			ms = int(a[0])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC).
			Add(time.Duration(ms) * time.Millisecond)
	})
	setField("setYear", 1, func(t time.Time, a []float64) time.Time {
		y := t.Year()
		if len(a) > 0 {
			y = int(a[0])
			if y >= 0 && y <= 99 {
				y += 1900
			}
		}
		return time.Date(y, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	})

	strMethod := func(name string, f func(t time.Time, tv float64) string) {
		defineMethod(it, proto, name, 0, func(this value.Value, args []value.Value) (value.Value, error) {
			t, tv, err := getTime(this)
			if err != nil {
				return value.Undefined, err
			}
			if math.IsNaN(tv) && name != "toString" {
				return value.StrFromGo("Invalid Date"), nil
			}
			return value.StrFromGo(f(t, tv)), nil
		})
	}

	strMethod("toString", func(t time.Time, tv float64) string {
		if math.IsNaN(tv) {
			return "Invalid Date"
		}
		return formatDate(int64(tv))
	})
	strMethod("toDateString", func(t time.Time, tv float64) string {
		return t.Format("Mon Jan 02 2006")
	})
	strMethod("toTimeString", func(t time.Time, tv float64) string {
		return t.Format("15:04:05 GMT+0000 (Coordinated Universal Time)")
	})
	strMethod("toUTCString", func(t time.Time, tv float64) string {
		return t.Format("Mon, 02 Jan 2006 15:04:05 GMT")
	})
	strMethod("toGMTString", func(t time.Time, tv float64) string {
		return t.Format("Mon, 02 Jan 2006 15:04:05 GMT")
	})
	strMethod("toISOString", func(t time.Time, tv float64) string {
		return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%03dZ",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6)
	})
	strMethod("toLocaleDateString", func(t time.Time, tv float64) string {
		return t.Format("Mon Jan 02 2006")
	})
	strMethod("toLocaleTimeString", func(t time.Time, tv float64) string {
		return t.Format("15:04:05")
	})
	strMethod("toLocaleString", func(t time.Time, tv float64) string {
		return formatDate(int64(tv))
	})

	defineMethod(it, proto, "toJSON", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		prim, err := it.ToPrimitive(value.Object(o), "number")
		if err != nil {
			return value.Undefined, err
		}
		n, err := it.ToNumber(prim)
		if err != nil {
			return value.Undefined, err
		}
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return value.Null, nil
		}
		fn, err := it.Get(o, "toISOString", this)
		if err != nil {
			return value.Undefined, err
		}
		f, ok := isCallableValue(fn)
		if !ok {
			return value.Undefined, newTypeError("toISOString is not a function")
		}
		return it.Call(f, this, nil)
	})
}
