package env

import (
	"testing"

	"github.com/mras0/mjs-sub001/internal/value"
)

func TestDeclarativeBindingLifecycle(t *testing.T) {
	r := NewDeclarative(nil)
	r.CreateMutableBinding("x", false)

	got, err := r.GetBindingValue("x", false)
	if err != nil || !got.IsUndefined() {
		t.Fatalf("expected undefined before initialization, got %v err=%v", got, err)
	}

	if err := r.SetMutableBinding("x", value.Number(5), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = r.GetBindingValue("x", false)
	if err != nil || got.NumberValue() != 5 {
		t.Fatalf("expected 5, got %v err=%v", got, err)
	}
}

func TestImmutableBindingRejectsReassignment(t *testing.T) {
	r := NewDeclarative(nil)
	r.CreateImmutableBinding("c")
	r.InitializeImmutableBinding("c", value.Number(1))

	if err := r.SetMutableBinding("c", value.Number(2), true); err == nil {
		t.Fatal("expected strict-mode assignment to a constant binding to error")
	}
	if err := r.SetMutableBinding("c", value.Number(2), false); err != nil {
		t.Fatalf("non-strict assignment to a constant binding should be silently ignored, got %v", err)
	}
	got, _ := r.GetBindingValue("c", false)
	if got.NumberValue() != 1 {
		t.Fatal("constant binding value should not have changed")
	}
}

func TestStrictModeUndeclaredAssignmentThrows(t *testing.T) {
	r := NewDeclarative(nil)
	if err := r.SetMutableBinding("undeclared", value.Number(1), true); err == nil {
		t.Fatal("expected a ReferenceError assigning to an undeclared binding in strict mode")
	}
	if err := r.SetMutableBinding("undeclared2", value.Number(1), false); err != nil {
		t.Fatalf("non-strict assignment should implicitly create a global, got error: %v", err)
	}
}

func TestGetIdentifierReferenceWalksOuterChain(t *testing.T) {
	outer := NewDeclarative(nil)
	outer.CreateMutableBinding("y", false)
	outer.SetMutableBinding("y", value.Number(10), false)

	inner := NewDeclarative(outer)
	inner.CreateMutableBinding("z", false)

	ref := GetIdentifierReference(inner, "y", false)
	if ref.Base == nil {
		t.Fatal("expected binding for y to resolve via outer scope")
	}
	got, _ := ref.Base.GetBindingValue("y", false)
	if got.NumberValue() != 10 {
		t.Fatalf("expected 10, got %v", got)
	}

	ref = GetIdentifierReference(inner, "missing", false)
	if ref.Base != nil {
		t.Fatal("expected unresolved reference to have a nil Base")
	}
}

func TestDeleteBindingRespectsDeletableFlag(t *testing.T) {
	r := NewDeclarative(nil)
	r.CreateMutableBinding("perm", false)
	if r.DeleteBinding("perm") {
		t.Fatal("expected delete of a non-deletable binding to fail")
	}

	r.CreateMutableBinding("temp", true)
	if !r.DeleteBinding("temp") {
		t.Fatal("expected delete of a deletable binding to succeed")
	}
	if r.HasBinding("temp") {
		t.Fatal("binding should be gone after delete")
	}
}

func TestArgumentsObjectLength(t *testing.T) {
	scope := NewDeclarative(nil)
	scope.CreateMutableBinding("a", false)
	scope.SetMutableBinding("a", value.Number(1), false)

	argsObj := Arguments([]string{"a"}, []value.Value{value.Number(1)}, scope, false, nil, nil)

	length, err := argsObj.Get("length", value.Object(argsObj), nil)
	if err != nil || length.NumberValue() != 1 {
		t.Fatalf("expected arguments.length == 1, got %v err=%v", length, err)
	}
}
