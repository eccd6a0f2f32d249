package object

import (
	"testing"

	"github.com/mras0/mjs-sub001/internal/value"
)

func noGetter(fn *Object, this value.Value) (value.Value, error) {
	return fn.Call(this, nil)
}

func noSetter(fn *Object, this value.Value, v value.Value) error {
	_, err := fn.Call(this, []value.Value{v})
	return err
}

func TestDefineAndGetDataProperty(t *testing.T) {
	o := New("Object", nil)
	o.DefineDataProperty("x", value.Number(42), true, true, true)

	got, err := o.Get("x", value.Object(o), noGetter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsNumber() || got.NumberValue() != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestGetMissingPropertyIsUndefined(t *testing.T) {
	o := New("Object", nil)
	got, err := o.Get("missing", value.Object(o), noGetter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsUndefined() {
		t.Fatalf("expected undefined, got %v", got)
	}
}

func TestPrototypeChainLookup(t *testing.T) {
	proto := New("Object", nil)
	proto.DefineDataProperty("inherited", value.StrFromGo("from proto"), true, true, true)

	child := New("Object", proto)
	got, err := child.Get("inherited", value.Object(child), noGetter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StringValue().String() != "from proto" {
		t.Fatalf("expected inherited value, got %v", got)
	}
}

func TestNonWritablePropertyCannotBePut(t *testing.T) {
	o := New("Object", nil)
	o.DefineDataProperty("frozen", value.Number(1), false, true, true)

	if o.CanPut("frozen") {
		t.Fatal("expected CanPut to report false for a non-writable property")
	}

	err := o.Put("frozen", value.Number(2), true, noSetter)
	if err == nil {
		t.Fatal("expected Put in throw mode to return an error")
	}

	got, _ := o.Get("frozen", value.Object(o), noGetter)
	if got.NumberValue() != 1 {
		t.Fatal("value should be unchanged after a failed Put")
	}
}

func TestDeleteNonConfigurableFails(t *testing.T) {
	o := New("Object", nil)
	o.DefineDataProperty("perm", value.Number(1), true, true, false)

	ok, err := o.Delete("perm", false)
	if ok || err != nil {
		t.Fatalf("expected Delete to report false with no error, got ok=%v err=%v", ok, err)
	}
	if !o.HasProperty("perm") {
		t.Fatal("non-configurable property should still exist")
	}

	_, err = o.Delete("perm", true)
	if err == nil {
		t.Fatal("expected Delete in throw mode to return an error")
	}
}

func TestDeleteConfigurableSucceeds(t *testing.T) {
	o := New("Object", nil)
	o.DefineDataProperty("temp", value.Number(1), true, true, true)

	ok, err := o.Delete("temp", true)
	if !ok || err != nil {
		t.Fatalf("expected successful delete, got ok=%v err=%v", ok, err)
	}
	if o.HasProperty("temp") {
		t.Fatal("property should be gone after delete")
	}
}

func TestKeysPreservesInsertionOrder(t *testing.T) {
	o := New("Object", nil)
	o.DefineDataProperty("b", value.Number(1), true, true, true)
	o.DefineDataProperty("a", value.Number(2), true, true, true)
	o.DefineDataProperty("c", value.Number(3), true, true, true)

	keys := o.Keys()
	if len(keys) != 3 || keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Fatalf("expected insertion order [b a c], got %v", keys)
	}
}

func TestAccessorProperty(t *testing.T) {
	o := New("Object", nil)
	var backing value.Value = value.Number(7)

	getter := New("Function", nil)
	getter.Call = func(this value.Value, args []value.Value) (value.Value, error) {
		return backing, nil
	}
	setter := New("Function", nil)
	setter.Call = func(this value.Value, args []value.Value) (value.Value, error) {
		backing = args[0]
		return value.Undefined, nil
	}

	o.DefineAccessorProperty("x", getter, setter, true, true)

	got, err := o.Get("x", value.Object(o), noGetter)
	if err != nil || got.NumberValue() != 7 {
		t.Fatalf("expected accessor get to return 7, got %v err=%v", got, err)
	}

	if err := o.Put("x", value.Number(99), true, noSetter); err != nil {
		t.Fatalf("unexpected error from accessor Put: %v", err)
	}
	if backing.NumberValue() != 99 {
		t.Fatalf("expected setter to update backing value, got %v", backing)
	}
}

func TestExtensibleControlsNewProperties(t *testing.T) {
	o := New("Object", nil)
	o.SetExtensible(false)

	if o.CanPut("newProp") {
		t.Fatal("expected CanPut to be false on a non-extensible object for an absent property")
	}
}
